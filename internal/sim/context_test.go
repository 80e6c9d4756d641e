package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"golang.org/x/time/rate"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/orbit"
)

// testConfig lines every body up on the positive x axis of a 1000x800
// surface with streaks disabled.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	for i := range cfg.Bodies {
		zero := 0.0
		cfg.Bodies[i].Angle = &zero
	}
	cfg.Field.Streak.Rate = 0
	cfg.Seed = 1
	cfg.Window.Width = 1000
	cfg.Window.Height = 800
	return cfg
}

// at returns where b is drawn under the context's current camera.
func at(c *Context, b *orbit.Body) orbit.Vec2 {
	return c.view().Body(b)
}

func TestFrameAdvancesAngles(t *testing.T) {
	c := New(testConfig())
	c.Post(SetSpeed{Multiplier: 2})

	const n = 50
	for i := 0; i < n; i++ {
		c.Frame()
	}

	for _, b := range c.Registry().Bodies() {
		want := n * b.Speed * 2
		if math.Abs(b.Angle-want) > 1e-9 {
			t.Errorf("%s: expected angle %f, got %f", b.Name, want, b.Angle)
		}
	}
	sat, _ := c.Registry().Satellite()
	if math.Abs(sat.Angle-n*sat.Speed*2) > 1e-9 {
		t.Errorf("satellite: expected angle %f, got %f", n*sat.Speed*2, sat.Angle)
	}
}

func TestPauseFreezesEverything(t *testing.T) {
	cfg := testConfig()
	cfg.Field.Streak.Rate = 1
	c := New(cfg)
	c.Frame()
	if !c.Field().Streak.Active {
		t.Fatal("expected streak to spawn with rate 1")
	}

	c.Post(TogglePause{})
	f := c.Frame()
	if !f.Paused {
		t.Fatal("expected paused frame")
	}

	angles := make([]float64, 0)
	for _, b := range c.Registry().Bodies() {
		angles = append(angles, b.Angle)
	}
	belt := c.Field().Belt[0].Angle
	streak := c.Field().Streak

	for i := 0; i < 20; i++ {
		c.Frame()
	}

	for i, b := range c.Registry().Bodies() {
		if b.Angle != angles[i] {
			t.Errorf("%s moved while paused: %f -> %f", b.Name, angles[i], b.Angle)
		}
	}
	if c.Field().Belt[0].Angle != belt {
		t.Error("belt moved while paused")
	}
	if c.Field().Streak != streak {
		t.Errorf("streak moved while paused: %+v -> %+v", streak, c.Field().Streak)
	}
}

func TestClickStateMachine(t *testing.T) {
	c := New(testConfig())
	mercury := c.Registry().Lookup("Mercury")
	venus := c.Registry().Lookup("Venus")

	p := at(c, venus)
	c.Post(Click{X: p.X, Y: p.Y})
	f := c.Frame()
	if f.Followed != venus {
		t.Fatalf("expected Venus followed, got %v", f.Followed)
	}
	if f.Paused {
		t.Error("selecting a body must not pause")
	}
	if len(f.Events) != 1 || f.Events[0].Kind != EventFollow || f.Events[0].Body != "Venus" {
		t.Errorf("expected one follow event, got %+v", f.Events)
	}

	p = at(c, mercury)
	c.Post(Click{X: p.X, Y: p.Y})
	f = c.Frame()
	if f.Followed != mercury {
		t.Fatalf("expected Mercury followed, got %v", f.Followed)
	}

	p = at(c, mercury)
	c.Post(Click{X: p.X, Y: p.Y})
	f = c.Frame()
	if !f.Paused {
		t.Error("expected confirm click to pause")
	}
	if f.Inspecting != mercury {
		t.Errorf("expected Mercury inspected, got %v", f.Inspecting)
	}
	var inspect *Event
	for i := range f.Events {
		if f.Events[i].Kind == EventInspect {
			inspect = &f.Events[i]
		}
	}
	if inspect == nil || inspect.Body != "Mercury" || inspect.Fact != mercury.Fact {
		t.Errorf("expected inspect event for Mercury, got %+v", f.Events)
	}
}

func TestClickEmptySpace(t *testing.T) {
	c := New(testConfig())
	c.Post(Click{X: 5, Y: 5})
	f := c.Frame()
	if f.Followed != nil || f.Paused || len(f.Events) != 0 {
		t.Errorf("expected no change, got followed=%v paused=%v events=%+v", f.Followed, f.Paused, f.Events)
	}
}

func TestDismissResumes(t *testing.T) {
	c := New(testConfig())
	earth := c.Registry().Lookup("Earth")
	c.Camera().Follow(earth)

	p := at(c, earth)
	c.Post(Click{X: p.X, Y: p.Y})
	c.Frame()

	// Clicks are swallowed while the detail view is open.
	c.Post(Click{X: 5, Y: 5})
	c.Post(Click{X: p.X, Y: p.Y})
	f := c.Frame()
	if f.Inspecting != earth || !f.Paused {
		t.Fatalf("expected Earth still inspected and paused, got %v %v", f.Inspecting, f.Paused)
	}

	c.Post(Dismiss{})
	f = c.Frame()
	if f.Inspecting != nil || f.Paused {
		t.Errorf("expected dismiss to resume, got inspecting=%v paused=%v", f.Inspecting, f.Paused)
	}
	if f.Followed != earth {
		t.Error("dismiss must keep the followed body")
	}
}

func TestPauseHeldWhileInspecting(t *testing.T) {
	c := New(testConfig())
	earth := c.Registry().Lookup("Earth")
	c.Post(Inspect{Body: "Earth"})
	c.Frame()

	c.Post(TogglePause{})
	c.Post(SetPaused{Paused: false})
	f := c.Frame()
	if !f.Paused || f.Inspecting != earth {
		t.Fatalf("expected pause held while inspecting, got paused=%v inspecting=%v", f.Paused, f.Inspecting)
	}
	if len(f.Events) != 0 {
		t.Errorf("expected no events, got %+v", f.Events)
	}

	c.Post(Dismiss{})
	c.Frame()
	c.Post(TogglePause{})
	if f = c.Frame(); !f.Paused {
		t.Error("expected toggle to pause again after dismiss")
	}
}

func TestFollowByName(t *testing.T) {
	// at the minimum zoom every hit disc overlaps Mercury's
	cfg := testConfig()
	cfg.Camera.Zoom = cfg.Camera.MinZoom
	c := New(cfg)
	venus := c.Registry().Lookup("Venus")

	p := at(c, venus)
	c.Post(Click{X: p.X, Y: p.Y})
	if f := c.Frame(); f.Followed == venus {
		t.Fatal("expected the click to resolve to an earlier body")
	}

	c.Post(ResetView{})
	c.Frame()
	c.Post(Follow{Body: "Venus"})
	f := c.Frame()
	if f.Followed != venus {
		t.Fatalf("expected Venus followed, got %v", f.Followed)
	}
	if len(f.Events) != 1 || f.Events[0].Kind != EventFollow || f.Events[0].Body != "Venus" {
		t.Errorf("expected one follow event, got %+v", f.Events)
	}

	c.Post(Follow{Body: "Venus"})
	c.Post(Follow{Body: "Pluto"})
	f = c.Frame()
	if f.Followed != venus || f.Paused || len(f.Events) != 0 {
		t.Errorf("expected repeated and unknown follows ignored, got %v paused=%v events=%+v", f.Followed, f.Paused, f.Events)
	}
}

func TestInspectByName(t *testing.T) {
	cfg := testConfig()
	cfg.Camera.Zoom = cfg.Camera.MinZoom
	c := New(cfg)
	saturn := c.Registry().Lookup("Saturn")

	c.Post(Inspect{Body: "Saturn"})
	f := c.Frame()
	if f.Followed != saturn || f.Inspecting != saturn || !f.Paused {
		t.Fatalf("expected Saturn followed and inspected, got %v %v paused=%v", f.Followed, f.Inspecting, f.Paused)
	}
	kinds := make([]EventKind, 0, len(f.Events))
	for _, e := range f.Events {
		kinds = append(kinds, e.Kind)
	}
	want := []EventKind{EventFollow, EventPause, EventInspect}
	if len(kinds) != len(want) {
		t.Fatalf("expected events %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}

	c.Post(Follow{Body: "Mars"})
	c.Post(Inspect{Body: "Mars"})
	if f = c.Frame(); f.Followed != saturn || f.Inspecting != saturn {
		t.Errorf("expected named intents ignored while inspecting, got %v %v", f.Followed, f.Inspecting)
	}
}

func TestFollowCentersBody(t *testing.T) {
	c := New(testConfig())
	jupiter := c.Registry().Lookup("Jupiter")
	c.Camera().Follow(jupiter)

	for i := 0; i < 10; i++ {
		f := c.Frame()
		pos := f.View.Body(jupiter)
		if pos.Dist(f.View.Origin) > 1e-9 {
			t.Fatalf("frame %d: expected Jupiter at origin, got %+v", i, pos)
		}
	}
}

func TestWheelZoomClamps(t *testing.T) {
	c := New(testConfig())
	for i := 0; i < 100; i++ {
		c.Post(Wheel{Delta: -1})
	}
	c.Post(Wheel{Delta: 0})
	f := c.Frame()
	if f.View.Zoom != 10 {
		t.Errorf("expected zoom clamped to 10, got %f", f.View.Zoom)
	}

	c.Post(ResetView{})
	f = c.Frame()
	if f.View.Zoom != 0.8 || f.Followed != nil {
		t.Errorf("expected reset view, got zoom=%f followed=%v", f.View.Zoom, f.Followed)
	}
}

func TestSpeedClamp(t *testing.T) {
	tests := []struct {
		intent Intent
		want   float64
	}{
		{SetSpeed{Multiplier: 50}, 5},
		{SetSpeed{Multiplier: 0}, 0.1},
		{SetSpeed{Multiplier: 2.5}, 2.5},
		{AdjustSpeed{Steps: 1}, 1.1},
		{AdjustSpeed{Steps: -3}, 0.7},
		{AdjustSpeed{Steps: -100}, 0.1},
	}
	for _, tt := range tests {
		c := New(testConfig())
		c.Post(tt.intent)
		f := c.Frame()
		if math.Abs(f.Multiplier-tt.want) > 1e-9 {
			t.Errorf("%+v: expected multiplier %f, got %f", tt.intent, tt.want, f.Multiplier)
		}
	}
}

func TestResize(t *testing.T) {
	c := New(testConfig())
	c.Post(Resize{Width: 200, Height: 100})
	f := c.Frame()
	if f.View.Origin != (orbit.Vec2{X: 100, Y: 50}) {
		t.Errorf("expected origin (100,50), got %+v", f.View.Origin)
	}
	if len(c.Field().Stars) != 800 || len(c.Field().Belt) != 500 {
		t.Errorf("expected 800 stars and 500 debris, got %d and %d", len(c.Field().Stars), len(c.Field().Belt))
	}

	c.Post(Resize{Width: -5, Height: 0})
	f = c.Frame()
	if f.Width != 0 || f.Height != 0 || f.View.Origin != (orbit.Vec2{}) {
		t.Errorf("expected degenerate resize clamped to zero, got %dx%d origin %+v", f.Width, f.Height, f.View.Origin)
	}
}

func TestHoverCursor(t *testing.T) {
	c := New(testConfig())
	c.Post(SetPaused{Paused: true})
	c.Frame()

	saturn := c.Registry().Lookup("Saturn")
	p := at(c, saturn)
	c.Post(PointerMove{X: p.X + 3, Y: p.Y})
	f := c.Frame()
	if f.Hovered != saturn || f.Cursor != CursorPointer {
		t.Errorf("expected Saturn hovered with pointer cursor, got %v %v", f.Hovered, f.Cursor)
	}
	if !f.Highlighted(saturn) {
		t.Error("expected hovered body to be highlighted")
	}

	c.Post(PointerMove{X: 0, Y: 0})
	f = c.Frame()
	if f.Hovered != nil || f.Cursor != CursorDefault {
		t.Errorf("expected nothing hovered, got %v %v", f.Hovered, f.Cursor)
	}
}

func TestStreakEvents(t *testing.T) {
	cfg := testConfig()
	cfg.Field.Streak.Rate = 1
	c := New(cfg)
	f := c.Frame()
	if len(f.Events) != 1 || f.Events[0].Kind != EventStreakSpawned {
		t.Fatalf("expected streak spawn event, got %+v", f.Events)
	}

	retired := false
	for i := 0; i < 10000 && !retired; i++ {
		for _, e := range c.Frame().Events {
			if e.Kind == EventStreakRetired {
				retired = true
			}
		}
	}
	if !retired && c.Field().Streak.VX != 0 {
		t.Error("expected a drifting streak to retire eventually")
	}
}

func TestRunAndObservers(t *testing.T) {
	c := New(testConfig())
	rec := &Recorder{Limit: 3}
	count := 0
	c.AddObserver(rec)
	c.AddObserver(ObserverFunc(func(Frame) { count++ }))

	err := c.Run(context.Background(), 5, rate.NewLimiter(rate.Inf, 1), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 observed frames, got %d", count)
	}
	if len(rec.Frames) != 3 || rec.Frames[2].Index != 5 {
		t.Errorf("expected last 3 frames ending at 5, got %d frames", len(rec.Frames))
	}

	stopped := 0
	err = c.Run(context.Background(), 0, nil, func(Frame) bool {
		stopped++
		return stopped < 4
	})
	if err != nil || stopped != 4 {
		t.Errorf("expected callback to stop after 4 frames, got %d (%v)", stopped, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx, 0, nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEventKindString(t *testing.T) {
	if EventInspect.String() != "inspect" {
		t.Errorf("expected inspect, got %s", EventInspect.String())
	}
	if EventKind(99).String() != "unknown" {
		t.Errorf("expected unknown, got %s", EventKind(99).String())
	}
}
