package audio

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/gopxl/beep"

	"github.com/san-kum/orrery/internal/sim"
)

func buffers() [][]float32 {
	return [][]float32{make([]float32, BufferSize), make([]float32, BufferSize)}
}

func peak(out [][]float32) float64 {
	m := 0.0
	for _, ch := range out {
		for _, v := range ch {
			m = math.Max(m, math.Abs(float64(v)))
		}
	}
	return m
}

func TestCutoff(t *testing.T) {
	tests := []struct {
		multiplier float64
		want       float64
	}{
		{0, 300},
		{1, 480},
		{5, 1200},
		{10, 1200},
		{-1, 300},
	}
	for _, tt := range tests {
		if got := Cutoff(tt.multiplier); got != tt.want {
			t.Errorf("Cutoff(%v): expected %v, got %v", tt.multiplier, tt.want, got)
		}
	}
}

func TestDroneFadesWhenPaused(t *testing.T) {
	d := NewDrone()
	out := buffers()
	for i := 0; i < 30; i++ {
		d.Process(out)
	}
	if p := peak(out); p < 0.01 {
		t.Fatalf("expected audible output while running, got peak %v", p)
	}

	d.OnFrame(sim.Frame{Paused: true, Multiplier: 1})
	for i := 0; i < 200; i++ {
		d.Process(out)
	}
	if p := peak(out); p > 1e-3 {
		t.Errorf("expected silence while paused, got peak %v", p)
	}
}

func TestDroneLevels(t *testing.T) {
	d := NewDrone()
	out := buffers()
	for i := 0; i < 40; i++ {
		d.Process(out)
	}
	l := d.Levels()
	for name, v := range map[string]float64{"bass": l.Bass, "mid": l.Mid, "high": l.High} {
		if v < 0 || v > 1 {
			t.Errorf("%s level out of range: %v", name, v)
		}
	}
	if l.Bass <= 0 {
		t.Errorf("expected bass energy from the chord, got %v", l.Bass)
	}
}

func TestDroneStopWithoutStart(t *testing.T) {
	if err := NewDrone().Stop(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	_, _, err := decode("music.ogg", io.NopCloser(strings.NewReader("")))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestTrackMissingFile(t *testing.T) {
	tr := NewTrack(t.TempDir()+"/missing.mp3", 0.4)
	if err := tr.Start(); err == nil {
		t.Error("expected error for missing file")
	}
	if err := tr.Stop(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestVolume(t *testing.T) {
	silence := beep.Silence(-1)
	if v := volume(silence, 0); !v.Silent {
		t.Error("expected zero volume to be silent")
	}
	v := volume(silence, 0.4)
	if v.Silent || math.Abs(v.Volume-math.Log2(0.4)) > 1e-12 {
		t.Errorf("expected log2(0.4), got %v", v.Volume)
	}
	if v := volume(silence, 3); v.Volume != 0 {
		t.Errorf("expected gain capped at unity, got %v", v.Volume)
	}
}
