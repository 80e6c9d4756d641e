package metrics

import (
	"sort"

	"github.com/san-kum/orrery/internal/sim"
)

// Summary aggregates a run in memory for the end-of-run report.
type Summary struct {
	frames      int
	paused      int
	spawns      int
	retires     int
	follows     int
	inspections int
	maxZoom     float64
	minZoom     float64
	lastDay     int64
}

func NewSummary() *Summary {
	return &Summary{}
}

func (s *Summary) OnFrame(f sim.Frame) {
	if s.frames == 0 || f.View.Zoom > s.maxZoom {
		s.maxZoom = f.View.Zoom
	}
	if s.frames == 0 || f.View.Zoom < s.minZoom {
		s.minZoom = f.View.Zoom
	}
	s.frames++
	if f.Paused {
		s.paused++
	}
	s.lastDay = f.Day
	for _, e := range f.Events {
		switch e.Kind {
		case sim.EventStreakSpawned:
			s.spawns++
		case sim.EventStreakRetired:
			s.retires++
		case sim.EventFollow:
			s.follows++
		case sim.EventInspect:
			s.inspections++
		}
	}
}

// PausedFraction is the share of observed frames that were paused.
func (s *Summary) PausedFraction() float64 {
	if s.frames == 0 {
		return 0
	}
	return float64(s.paused) / float64(s.frames)
}

// Values returns the summary keyed by metric name.
func (s *Summary) Values() map[string]float64 {
	return map[string]float64{
		"frames":          float64(s.frames),
		"paused_fraction": s.PausedFraction(),
		"streak_spawns":   float64(s.spawns),
		"streak_retires":  float64(s.retires),
		"follow_changes":  float64(s.follows),
		"inspections":     float64(s.inspections),
		"zoom_min":        s.minZoom,
		"zoom_max":        s.maxZoom,
		"day":             float64(s.lastDay),
	}
}

// Names returns the metric names in a stable order.
func (s *Summary) Names() []string {
	v := s.Values()
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
