// Package audio provides the sound collaborators of a host: a synthesized
// drone that follows the simulation speed and an optional looping track.
// Both are sim observers; neither can stop the frame loop.
package audio

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/orrery/internal/sim"
)

const (
	SampleRate = 44100
	BufferSize = 1024
)

var ErrNotStarted = errors.New("audio: not started")

// Player is a sound source a host can start and stop.
type Player interface {
	sim.Observer
	Start() error
	Stop() error
}

// Levels are smoothed band energies of the drone output in [0, 1].
type Levels struct {
	Bass, Mid, High float64
}

// Drone is an ambient pad whose filter opens with the time multiplier and
// which fades out while the simulation is paused.
type Drone struct {
	stream *portaudio.Stream

	mu         sync.Mutex
	multiplier float64
	paused     bool
	levels     Levels

	// Callback state.
	time     float64
	gain     float64
	speed    float64
	filter   [2]float64
	delay    [2][]float64
	head     int
	spectrum []complex128
	maxLevel float64
}

func NewDrone() *Drone {
	delayLen := int(float64(SampleRate) * 0.6)
	return &Drone{
		multiplier: 1,
		speed:      1,
		delay:      [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
		spectrum:   make([]complex128, BufferSize),
		maxLevel:   0.1,
	}
}

// Start opens the default output stream.
func (d *Drone) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: initialize: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, d.Process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: start stream: %w", err)
	}
	d.stream = stream
	return nil
}

func (d *Drone) Stop() error {
	if d.stream == nil {
		return ErrNotStarted
	}
	err := errors.Join(d.stream.Stop(), d.stream.Close(), portaudio.Terminate())
	d.stream = nil
	if err != nil {
		return fmt.Errorf("audio: stop: %w", err)
	}
	return nil
}

// OnFrame implements sim.Observer.
func (d *Drone) OnFrame(f sim.Frame) {
	d.mu.Lock()
	d.multiplier = f.Multiplier
	d.paused = f.Paused
	d.mu.Unlock()
}

func (d *Drone) Levels() Levels {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.levels
}

// Cutoff is the low-pass frequency for a time multiplier.
func Cutoff(multiplier float64) float64 {
	return 300 + math.Min(math.Max(multiplier, 0)*180, 900)
}

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// G2, Bb2, D3, F3, A3
var chord = []float64{98.00, 116.54, 146.83, 174.61, 220.00}

// Process fills a non-interleaved stereo buffer. It is the stream callback.
func (d *Drone) Process(out [][]float32) {
	d.mu.Lock()
	multiplier, paused := d.multiplier, d.paused
	d.mu.Unlock()

	target := 1.0
	if paused {
		target = 0
	}
	const vol = 0.252
	dt := 1.0 / float64(SampleRate)

	for i := range out[0] {
		d.gain += (target - d.gain) * 0.0005
		d.speed += (multiplier - d.speed) * 0.0001
		cutoff := Cutoff(d.speed)

		sampleL, sampleR := 0.0, 0.0
		g := 1.0 / float64(len(chord))
		for j, f := range chord {
			lfo := math.Sin(d.time*0.2 + float64(j))
			sampleL += triangle(d.time*f*0.999) * g * (0.7 + 0.3*lfo)
			sampleR += triangle(d.time*f*1.001) * g * (0.7 + 0.3*lfo)
		}

		d.filter[0] = lpf(sampleL*d.gain, cutoff, dt, d.filter[0])
		d.filter[1] = lpf(sampleR*d.gain, cutoff, dt, d.filter[1])

		delayL := d.delay[0][d.head]
		delayR := d.delay[1][d.head]
		mixL := d.filter[0] + delayL*0.3 + delayR*0.1
		mixR := d.filter[1] + delayR*0.3 + delayL*0.1
		d.delay[0][d.head] = mixL * 0.7
		d.delay[1][d.head] = mixR * 0.7
		d.head = (d.head + 1) % len(d.delay[0])

		out[0][i] = float32(mixL * vol)
		if len(out) > 1 {
			out[1][i] = float32(mixR * vol)
		}
		d.time += dt
	}

	d.analyze(out[0])
}

// analyze updates the band levels from a windowed FFT of buf.
func (d *Drone) analyze(buf []float32) {
	for i := range d.spectrum {
		v := 0.0
		if i < len(buf) {
			v = float64(buf[i])
		}
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(BufferSize-1)))
		d.spectrum[i] = complex(v*window, 0)
	}
	spectrum := fft.FFT(d.spectrum)

	var bass, mid, high float64
	for i := 0; i < BufferSize/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		switch {
		case i < 5:
			bass += mag
		case i < 46:
			mid += mag
		case i < 460:
			high += mag
		}
	}

	peak := math.Max(bass/100.0, math.Max(mid/500.0, high/1000.0))
	if peak > d.maxLevel {
		d.maxLevel = peak
	} else {
		d.maxLevel *= 0.999
	}
	gain := 1.0
	if d.maxLevel > 0.001 {
		gain = math.Min(1.0/d.maxLevel, 50.0)
	}

	d.mu.Lock()
	d.levels.Bass = d.levels.Bass*0.9 + math.Min(bass/100.0*gain, 1.0)*0.1
	d.levels.Mid = d.levels.Mid*0.9 + math.Min(mid/500.0*gain, 1.0)*0.1
	d.levels.High = d.levels.High*0.9 + math.Min(high/1000.0*gain, 1.0)*0.1
	d.mu.Unlock()
}
