// Package sim owns the simulation context and runs one frame at a time:
// queued input is applied, the bodies and the field advance, the camera
// follows its target and the pointer is picked against the new positions.
package sim

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/san-kum/orrery/internal/camera"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/field"
	"github.com/san-kum/orrery/internal/logging"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/pick"
)

// Context is the single owner of all mutable simulation state. Frame must be
// called from one goroutine; Post is safe from any goroutine.
type Context struct {
	reg    *orbit.Registry
	clock  *orbit.Clock
	field  *field.Field
	cam    *camera.Camera
	speed  SpeedRange
	margin float64

	pointer    orbit.Vec2
	origin     orbit.Vec2
	width      int
	height     int
	inspecting *orbit.Body

	mu    sync.Mutex
	queue []Intent

	observers []Observer
	frames    uint64
	last      Frame
	log       logging.Logger
}

type Option func(*options)

type options struct {
	log    logging.Logger
	width  int
	height int
}

func WithLogger(l logging.Logger) Option { return func(o *options) { o.log = l } }

// WithSize overrides the initial surface size taken from the window config.
func WithSize(width, height int) Option {
	return func(o *options) { o.width, o.height = width, height }
}

// New builds a context from a validated configuration. A zero seed draws
// one from the clock.
func New(cfg *config.Config, opts ...Option) *Context {
	o := options{
		log:    logging.Noop(),
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
	}
	for _, opt := range opts {
		opt(&o)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	c := &Context{
		reg:    orbit.NewRegistry(cfg.BodySpecs(), cfg.SatelliteSpec(), cfg.Home, rng),
		clock:  orbit.NewClock(cfg.Speed.Default),
		field:  field.New(cfg.FieldConfig(), rng),
		cam:    camera.New(cfg.CameraLimits()),
		margin: cfg.PickMargin,
		speed: SpeedRange{
			Default: cfg.Speed.Default,
			Min:     cfg.Speed.Min,
			Max:     cfg.Speed.Max,
			Step:    cfg.Speed.Step,
		},
		log: o.log.With(logging.String("component", "sim")),
	}
	c.resize(o.width, o.height)
	c.last = c.snapshot(nil)
	return c
}

func (c *Context) AddObserver(o Observer) { c.observers = append(c.observers, o) }

func (c *Context) Registry() *orbit.Registry { return c.reg }
func (c *Context) Field() *field.Field       { return c.field }
func (c *Context) Camera() *camera.Camera    { return c.cam }
func (c *Context) Clock() *orbit.Clock       { return c.clock }
func (c *Context) Speed() SpeedRange         { return c.speed }

// Last returns the most recent frame, or the initial state before the first
// frame.
func (c *Context) Last() Frame { return c.last }

// Post queues an intent for the next frame.
func (c *Context) Post(in Intent) {
	c.mu.Lock()
	c.queue = append(c.queue, in)
	c.mu.Unlock()
}

func (c *Context) drain() []Intent {
	c.mu.Lock()
	q := c.queue
	c.queue = nil
	c.mu.Unlock()
	return q
}

// Frame runs one frame and notifies observers.
func (c *Context) Frame() Frame {
	var events []Event
	for _, in := range c.drain() {
		events = c.apply(in, events)
	}

	c.clock.Advance(c.reg, c.field.Belt)
	switch c.field.Advance(c.clock.Paused) {
	case field.StreakSpawned:
		events = append(events, Event{Kind: EventStreakSpawned})
	case field.StreakRetired:
		events = append(events, Event{Kind: EventStreakRetired})
	}

	c.frames++
	f := c.snapshot(events)
	c.last = f
	for _, o := range c.observers {
		o.OnFrame(f)
	}
	return f
}

// Run drives frames until ctx is done, n frames have run, or fn returns
// false. n <= 0 runs until cancelled. A nil pace runs frames back to back.
func (c *Context) Run(ctx context.Context, n int, pace Pacer, fn func(Frame) bool) error {
	for i := 0; n <= 0 || i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if pace != nil {
			if err := pace.Wait(ctx); err != nil {
				return err
			}
		}
		f := c.Frame()
		if fn != nil && !fn(f) {
			return nil
		}
	}
	return nil
}

// Pacer blocks until the next frame may run. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

func (c *Context) view() orbit.View {
	return c.cam.View(c.origin)
}

func (c *Context) snapshot(events []Event) Frame {
	v := c.view()
	hovered := pick.At(c.pointer, c.reg.Bodies(), v, c.margin)
	cursor := CursorDefault
	if hovered != nil {
		cursor = CursorPointer
	}
	return Frame{
		Index:      c.frames,
		Day:        c.clock.Day(),
		HomeAngle:  c.clock.HomeAngle(),
		Paused:     c.clock.Paused,
		Multiplier: c.clock.Multiplier,
		View:       v,
		Width:      c.width,
		Height:     c.height,
		Hovered:    hovered,
		Followed:   c.cam.Followed(),
		Inspecting: c.inspecting,
		Cursor:     cursor,
		Streak:     c.field.Streak,
		Events:     events,
	}
}

func (c *Context) apply(in Intent, events []Event) []Event {
	switch in := in.(type) {
	case PointerMove:
		c.pointer = orbit.Vec2{X: in.X, Y: in.Y}
	case Click:
		c.pointer = orbit.Vec2{X: in.X, Y: in.Y}
		if c.inspecting != nil {
			return events
		}
		return c.click(events)
	case Wheel:
		if in.Delta != 0 {
			c.cam.ZoomBy(camera.DirectionOf(in.Delta))
		}
	case Follow:
		b := c.reg.Lookup(in.Body)
		if b == nil || c.inspecting != nil || c.cam.IsFollowing(b) {
			return events
		}
		return c.follow(b, events)
	case Inspect:
		b := c.reg.Lookup(in.Body)
		if b == nil || c.inspecting != nil {
			return events
		}
		if !c.cam.IsFollowing(b) {
			events = c.follow(b, events)
		}
		return c.inspect(b, events)
	case TogglePause:
		if c.inspecting != nil {
			return events
		}
		return c.setPaused(!c.clock.Paused, events)
	case SetPaused:
		if c.inspecting != nil {
			return events
		}
		return c.setPaused(in.Paused, events)
	case SetSpeed:
		c.clock.Multiplier = c.speed.clamp(in.Multiplier)
	case AdjustSpeed:
		m := c.clock.Multiplier + float64(in.Steps)*c.speed.Step
		// snapped to the step grid
		if c.speed.Step > 0 {
			m = math.Round(m/c.speed.Step) * c.speed.Step
		}
		c.clock.Multiplier = c.speed.clamp(m)
	case Resize:
		c.resize(in.Width, in.Height)
		events = append(events, Event{Kind: EventResize})
	case ResetView:
		c.cam.Reset()
		events = append(events, Event{Kind: EventReset})
	case Dismiss:
		if c.inspecting == nil {
			return events
		}
		c.inspecting = nil
		events = append(events, Event{Kind: EventDismiss})
		return c.setPaused(false, events)
	}
	return events
}

// click runs the select-then-confirm state machine against the positions the
// user is looking at, which are those of the previous frame.
func (c *Context) click(events []Event) []Event {
	target := pick.At(c.pointer, c.reg.Bodies(), c.view(), c.margin)
	switch {
	case target == nil:
		return events
	case c.cam.IsFollowing(target):
		return c.inspect(target, events)
	default:
		return c.follow(target, events)
	}
}

func (c *Context) follow(b *orbit.Body, events []Event) []Event {
	c.cam.Follow(b)
	c.log.Debug(context.Background(), "follow", logging.String("body", b.Name))
	return append(events, Event{Kind: EventFollow, Body: b.Name, Fact: b.Fact})
}

func (c *Context) inspect(b *orbit.Body, events []Event) []Event {
	c.inspecting = b
	events = c.setPaused(true, events)
	c.log.Debug(context.Background(), "inspect", logging.String("body", b.Name))
	return append(events, Event{Kind: EventInspect, Body: b.Name, Fact: b.Fact})
}

func (c *Context) setPaused(paused bool, events []Event) []Event {
	if c.clock.Paused == paused {
		return events
	}
	c.clock.Paused = paused
	if paused {
		return append(events, Event{Kind: EventPause})
	}
	return append(events, Event{Kind: EventResume})
}

func (c *Context) resize(width, height int) {
	c.width = max(0, width)
	c.height = max(0, height)
	c.field.Resize(c.width, c.height)
	c.origin = orbit.Vec2{X: float64(c.width) / 2, Y: float64(c.height) / 2}
}
