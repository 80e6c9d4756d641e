package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/sim"
)

func frame(zoom float64, paused bool, kinds ...sim.EventKind) sim.Frame {
	f := sim.Frame{
		Day:        12,
		Paused:     paused,
		Multiplier: 1.5,
		View:       orbit.View{Zoom: zoom},
	}
	for _, k := range kinds {
		f.Events = append(f.Events, sim.Event{Kind: k})
	}
	return f
}

func TestCollectorRecordsFrames(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.OnFrame(frame(0.8, false, sim.EventStreakSpawned, sim.EventFollow))
	c.OnFrame(frame(1.2, true, sim.EventInspect, sim.EventPause))
	c.OnFrame(frame(1.2, true, sim.EventStreakRetired))

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"frames", testutil.ToFloat64(c.Frames), 3},
		{"spawns", testutil.ToFloat64(c.StreakSpawns), 1},
		{"retires", testutil.ToFloat64(c.StreakRetires), 1},
		{"follows", testutil.ToFloat64(c.FollowChanges), 1},
		{"inspections", testutil.ToFloat64(c.Inspections), 1},
		{"zoom", testutil.ToFloat64(c.Zoom), 1.2},
		{"multiplier", testutil.ToFloat64(c.Multiplier), 1.5},
		{"paused", testutil.ToFloat64(c.Paused), 1},
		{"day", testutil.ToFloat64(c.Day), 12},
	}
	for _, tt := range checks {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(c.FrameDurations); n != 1 {
		t.Errorf("expected one histogram series, got %d", n)
	}
}

func TestCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}
	second.OnFrame(frame(1, false))
	if got := testutil.ToFloat64(first.Frames); got != 1 {
		t.Errorf("expected shared counter, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	c.OnFrame(frame(2, false))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{"orrery_frames_total 1", "orrery_zoom_scale 2"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %q in output", name)
		}
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(data), "orrery_frames_total") {
		t.Error("expected metrics body")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	s.OnFrame(frame(0.8, false, sim.EventStreakSpawned))
	s.OnFrame(frame(2, true, sim.EventFollow, sim.EventInspect))
	s.OnFrame(frame(0.5, true))
	s.OnFrame(frame(1, false, sim.EventStreakRetired))

	v := s.Values()
	want := map[string]float64{
		"frames":          4,
		"paused_fraction": 0.5,
		"streak_spawns":   1,
		"streak_retires":  1,
		"follow_changes":  1,
		"inspections":     1,
		"zoom_min":        0.5,
		"zoom_max":        2,
		"day":             12,
	}
	for k, w := range want {
		if v[k] != w {
			t.Errorf("%s = %v, want %v", k, v[k], w)
		}
	}
	names := s.Names()
	if len(names) != len(want) || names[0] != "day" {
		t.Errorf("unexpected names %v", names)
	}
}
