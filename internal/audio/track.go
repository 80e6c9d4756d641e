package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/san-kum/orrery/internal/sim"
)

var ErrUnsupported = errors.New("audio: unsupported track format")

var speakerOnce struct {
	sync.Mutex
	rate beep.SampleRate
}

// Track loops a wav or mp3 file through the speaker and pauses with the
// simulation.
type Track struct {
	path   string
	volume float64

	mu      sync.Mutex
	source  beep.StreamSeekCloser
	ctrl    *beep.Ctrl
	started bool
}

func NewTrack(path string, volume float64) *Track {
	return &Track{path: path, volume: volume}
}

// decode picks a decoder from the file extension.
func decode(name string, rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return wav.Decode(rc)
	case ".mp3":
		return mp3.Decode(rc)
	default:
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
}

// volume maps a linear gain in [0, 1] onto a beep volume effect.
func volume(s beep.Streamer, v float64) *effects.Volume {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(math.Min(v, 1))}
}

func (t *Track) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return nil
	}

	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("audio: open track: %w", err)
	}
	source, format, err := decode(t.path, f)
	if err != nil {
		return fmt.Errorf("audio: decode %s: %w", t.path, err)
	}

	speakerOnce.Lock()
	if speakerOnce.rate == 0 {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(100*time.Millisecond)); err != nil {
			speakerOnce.Unlock()
			source.Close()
			return fmt.Errorf("audio: speaker: %w", err)
		}
		speakerOnce.rate = format.SampleRate
	}
	rate := speakerOnce.rate
	speakerOnce.Unlock()

	var s beep.Streamer = beep.Loop(-1, source)
	if format.SampleRate != rate {
		s = beep.Resample(4, format.SampleRate, rate, s)
	}
	t.source = source
	t.ctrl = &beep.Ctrl{Streamer: volume(s, t.volume)}
	speaker.Play(t.ctrl)
	t.started = true
	return nil
}

func (t *Track) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return ErrNotStarted
	}
	speaker.Lock()
	t.ctrl.Paused = true
	speaker.Unlock()
	speaker.Clear()
	t.started = false
	if err := t.source.Close(); err != nil {
		return fmt.Errorf("audio: close track: %w", err)
	}
	return nil
}

// OnFrame implements sim.Observer.
func (t *Track) OnFrame(f sim.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started || t.ctrl.Paused == f.Paused {
		return
	}
	speaker.Lock()
	t.ctrl.Paused = f.Paused
	speaker.Unlock()
}
