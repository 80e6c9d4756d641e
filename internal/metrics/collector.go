// Package metrics exposes simulation activity: a Prometheus collector for
// long-running hosts and an in-memory summary for headless runs.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/orrery/internal/sim"
)

// Collector bundles the Prometheus metrics fed by sim frames.
type Collector struct {
	gatherer prometheus.Gatherer

	Frames         prometheus.Counter
	StreakSpawns   prometheus.Counter
	StreakRetires  prometheus.Counter
	FollowChanges  prometheus.Counter
	Inspections    prometheus.Counter
	FrameDurations prometheus.Histogram

	Zoom       prometheus.Gauge
	Multiplier prometheus.Gauge
	Paused     prometheus.Gauge
	Day        prometheus.Gauge

	last time.Time
	now  func() time.Time
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer, now: time.Now}
	var err error
	counters := []struct {
		dst  *prometheus.Counter
		name string
		help string
	}{
		{&c.Frames, "orrery_frames_total", "Frames simulated, paused or not."},
		{&c.StreakSpawns, "orrery_streak_spawns_total", "Streaks that entered the view."},
		{&c.StreakRetires, "orrery_streak_retirements_total", "Streaks that left the view past the margin."},
		{&c.FollowChanges, "orrery_follow_changes_total", "Clicks that changed the followed body."},
		{&c.Inspections, "orrery_inspections_total", "Clicks that opened a body's details."},
	}
	for _, m := range counters {
		*m.dst, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: m.name,
			Help: m.help,
		}), m.name)
		if err != nil {
			return nil, err
		}
	}

	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.Zoom, "orrery_zoom_scale", "Current camera zoom scale."},
		{&c.Multiplier, "orrery_time_multiplier", "Current global time multiplier."},
		{&c.Paused, "orrery_paused", "1 while the simulation is paused."},
		{&c.Day, "orrery_day", "Day counter derived from the home body's phase."},
	}
	for _, m := range gauges {
		*m.dst, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: m.name,
			Help: m.help,
		}), m.name)
		if err != nil {
			return nil, err
		}
	}

	c.FrameDurations, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orrery_frame_interval_seconds",
		Help:    "Wall-clock time between consecutive frames.",
		Buckets: []float64{0.004, 0.008, 0.016, 0.033, 0.05, 0.1, 0.25, 1},
	}), "orrery_frame_interval_seconds")
	if err != nil {
		return nil, err
	}
	return c, nil
}

// OnFrame implements sim.Observer.
func (c *Collector) OnFrame(f sim.Frame) {
	if c == nil {
		return
	}
	now := c.now()
	if !c.last.IsZero() {
		c.FrameDurations.Observe(now.Sub(c.last).Seconds())
	}
	c.last = now

	c.Frames.Inc()
	for _, e := range f.Events {
		switch e.Kind {
		case sim.EventStreakSpawned:
			c.StreakSpawns.Inc()
		case sim.EventStreakRetired:
			c.StreakRetires.Inc()
		case sim.EventFollow:
			c.FollowChanges.Inc()
		case sim.EventInspect:
			c.Inspections.Inc()
		}
	}

	c.Zoom.Set(f.View.Zoom)
	c.Multiplier.Set(f.Multiplier)
	c.Day.Set(float64(f.Day))
	if f.Paused {
		c.Paused.Set(1)
	} else {
		c.Paused.Set(0)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	return c.serve(ctx, ln)
}

func (c *Collector) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
