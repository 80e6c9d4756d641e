package orbit

import (
	"image/color"
	"math"
	"math/rand"
	"testing"
	"time"
)

func angle(v float64) *float64 { return &v }

func testSpecs() []BodySpec {
	return []BodySpec{
		{Name: "Inner", Distance: 80, Radius: 4, Speed: 0.03, Angle: angle(0)},
		{Name: "Home", Distance: 190, Radius: 8, Speed: 0.01, Angle: angle(1), HasSatellite: true},
		{Name: "Outer", Distance: 540, Radius: 18, Speed: -0.003, Angle: angle(2), HasRings: true},
	}
}

func testRegistry() *Registry {
	sat := SatelliteSpec{Distance: 16, Radius: 2, Color: color.RGBA{170, 170, 170, 255}, Speed: 0.04}
	return NewRegistry(testSpecs(), sat, "Home", rand.New(rand.NewSource(1)))
}

func TestWorldToSurface(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		angle    float64
		origin   Vec2
		offset   Vec2
		zoom     float64
		want     Vec2
	}{
		{"origin", 0, 1.3, Vec2{640, 360}, Vec2{}, 1, Vec2{640, 360}},
		{"east", 100, 0, Vec2{640, 360}, Vec2{}, 1, Vec2{740, 360}},
		{"south", 100, math.Pi / 2, Vec2{0, 0}, Vec2{}, 0.5, Vec2{0, 50}},
		{"offset", 100, 0, Vec2{640, 360}, Vec2{100, 0}, 1, Vec2{640, 360}},
		{"zoomed", 10, math.Pi, Vec2{0, 0}, Vec2{}, 3, Vec2{-30, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorldToSurface(tt.distance, tt.angle, tt.origin, tt.offset, tt.zoom)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFollowOffsetCentersBody(t *testing.T) {
	reg := testRegistry()
	origin := Vec2{400, 300}
	for _, b := range reg.Bodies() {
		for _, zoom := range []float64{0.05, 0.8, 10} {
			v := View{Origin: origin, Offset: FollowOffset(b, zoom), Zoom: zoom}
			p := v.Body(b)
			if p.Dist(origin) > 1e-9 {
				t.Errorf("%s at zoom %.2f: expected %v, got %v", b.Name, zoom, origin, p)
			}
		}
	}
	if got := FollowOffset(nil, 2); got != (Vec2{}) {
		t.Errorf("expected zero offset for nil body, got %v", got)
	}
}

func TestViewCenterAndAround(t *testing.T) {
	v := View{Origin: Vec2{100, 100}, Offset: Vec2{10, -10}, Zoom: 2}
	if c := v.Center(); c != (Vec2{90, 110}) {
		t.Errorf("expected center {90 110}, got %v", c)
	}
	p := v.Around(Vec2{5, 5}, 3, 0)
	if math.Abs(p.X-11) > 1e-9 || math.Abs(p.Y-5) > 1e-9 {
		t.Errorf("expected {11 5}, got %v", p)
	}
}

func TestRegistry(t *testing.T) {
	reg := testRegistry()

	if len(reg.Bodies()) != 3 {
		t.Fatalf("expected 3 bodies, got %d", len(reg.Bodies()))
	}
	for i, name := range []string{"Inner", "Home", "Outer"} {
		if reg.Bodies()[i].Name != name {
			t.Errorf("expected body %d to be %s, got %s", i, name, reg.Bodies()[i].Name)
		}
	}

	sat, parent := reg.Satellite()
	if sat == nil || parent == nil {
		t.Fatal("expected satellite attached")
	}
	if parent.Name != "Home" {
		t.Errorf("expected satellite parent Home, got %s", parent.Name)
	}
	if reg.Home() != reg.Lookup("Home") {
		t.Error("home body not resolved")
	}
	if reg.Lookup("Pluto") != nil {
		t.Error("expected nil for unknown body")
	}
}

func TestRegistryRandomPhase(t *testing.T) {
	specs := []BodySpec{{Name: "A", Distance: 10, Speed: 0.1}, {Name: "B", Distance: 20, Speed: 0.1}}
	reg := NewRegistry(specs, SatelliteSpec{}, "", rand.New(rand.NewSource(7)))

	for _, b := range reg.Bodies() {
		if b.Angle < 0 || b.Angle >= 6 {
			t.Errorf("%s: expected phase in [0, 6), got %f", b.Name, b.Angle)
		}
	}
	if sat, _ := reg.Satellite(); sat != nil {
		t.Error("expected no satellite without a flagged parent")
	}
	if reg.Home() != nil {
		t.Error("expected no home body")
	}
}

func TestClockAdvance(t *testing.T) {
	for _, mult := range []float64{0.1, 1, 2.5, 5} {
		reg := testRegistry()
		initial := make([]float64, len(reg.Bodies()))
		for i, b := range reg.Bodies() {
			initial[i] = b.Angle
		}
		sat, _ := reg.Satellite()
		satInitial := sat.Angle

		clock := NewClock(mult)
		const n = 1000
		for i := 0; i < n; i++ {
			clock.Advance(reg)
		}

		for i, b := range reg.Bodies() {
			want := initial[i] + n*b.Speed*mult
			if math.Abs(b.Angle-want) > 1e-9 {
				t.Errorf("mult %.1f %s: expected %f, got %f", mult, b.Name, want, b.Angle)
			}
		}
		if want := satInitial + n*sat.Speed*mult; math.Abs(sat.Angle-want) > 1e-9 {
			t.Errorf("mult %.1f satellite: expected %f, got %f", mult, want, sat.Angle)
		}
		if clock.Frames() != n {
			t.Errorf("expected %d frames, got %d", n, clock.Frames())
		}
	}
}

type countingRotor struct{ total float64 }

func (c *countingRotor) Rotate(m float64) { c.total += m }

func TestClockPauseFreezes(t *testing.T) {
	reg := testRegistry()
	clock := NewClock(1)
	extra := &countingRotor{}
	for i := 0; i < 10; i++ {
		clock.Advance(reg, extra)
	}

	before := make([]float64, len(reg.Bodies()))
	for i, b := range reg.Bodies() {
		before[i] = b.Angle
	}
	sat, _ := reg.Satellite()
	satBefore, extraBefore, dayBefore := sat.Angle, extra.total, clock.HomeAngle()

	clock.Paused = true
	for i := 0; i < 100; i++ {
		if clock.Advance(reg, extra) {
			t.Fatal("paused clock reported movement")
		}
	}

	for i, b := range reg.Bodies() {
		if b.Angle != before[i] {
			t.Errorf("%s moved while paused: %v -> %v", b.Name, before[i], b.Angle)
		}
	}
	if sat.Angle != satBefore || extra.total != extraBefore || clock.HomeAngle() != dayBefore {
		t.Error("paused clock mutated satellite, rotor or home accumulator")
	}
}

func TestClockDayCounter(t *testing.T) {
	reg := testRegistry()
	home := reg.Home()
	clock := NewClock(1)

	if clock.Day() != 0 {
		t.Fatalf("expected day 0, got %d", clock.Day())
	}

	// one full revolution of the home body
	frames := int(math.Ceil(2 * math.Pi / home.Speed))
	for i := 0; i < frames; i++ {
		clock.Advance(reg)
	}
	if d := clock.Day(); d != 365 {
		t.Errorf("expected day 365 after one revolution, got %d", d)
	}

	// cumulative angle never wraps even though the display angle does
	if clock.HomeAngle() < 2*math.Pi {
		t.Errorf("expected cumulative angle >= 2π, got %f", clock.HomeAngle())
	}

	prev := clock.Day()
	clock.Multiplier = 5
	for i := 0; i < 500; i++ {
		clock.Advance(reg)
		if d := clock.Day(); d < prev {
			t.Fatalf("day counter decreased: %d -> %d", prev, d)
		} else {
			prev = d
		}
	}
}

func TestCalendarDate(t *testing.T) {
	epoch := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		day  int64
		want string
	}{
		{0, "2000-01-01"},
		{31, "2000-02-01"},
		{366, "2001-01-01"},
	}
	for _, tt := range tests {
		got := CalendarDate(epoch, tt.day).Format("2006-01-02")
		if got != tt.want {
			t.Errorf("day %d: expected %s, got %s", tt.day, tt.want, got)
		}
	}
}

func TestTrigTable(t *testing.T) {
	for x := -10.0; x < 10; x += 0.137 {
		s, c := FastSinCos(x)
		if math.Abs(s-math.Sin(x)) > 1e-5 {
			t.Errorf("sin(%f): expected %f, got %f", x, math.Sin(x), s)
		}
		if math.Abs(c-math.Cos(x)) > 1e-5 {
			t.Errorf("cos(%f): expected %f, got %f", x, math.Cos(x), c)
		}
	}
}
