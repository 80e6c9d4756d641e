package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orrery/internal/logging"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/sim"
)

// Action names a scripted step.
type Action string

const (
	ActionFollow  Action = "follow"
	ActionInspect Action = "inspect"
	ActionHover   Action = "hover"
	ActionClick   Action = "click"
	ActionWheel   Action = "wheel"
	ActionPause   Action = "pause"
	ActionResume  Action = "resume"
	ActionToggle  Action = "toggle"
	ActionSpeed   Action = "speed"
	ActionFaster  Action = "faster"
	ActionSlower  Action = "slower"
	ActionReset   Action = "reset"
	ActionDismiss Action = "dismiss"
	ActionResize  Action = "resize"
)

var ErrUnknownAction = errors.New("unknown action")

// Scenario is a scripted camera tour.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step fires its action on frame At.
type Step struct {
	At     uint64  `yaml:"at"`
	Action Action  `yaml:"action"`
	Body   string  `yaml:"body,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	Delta  float64 `yaml:"delta,omitempty"`
	Speed  float64 `yaml:"speed,omitempty"`
	Steps  int     `yaml:"steps,omitempty"`
	Width  int     `yaml:"width,omitempty"`
	Height int     `yaml:"height,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	sort.SliceStable(sc.Steps, func(i, j int) bool { return sc.Steps[i].At < sc.Steps[j].At })
	return &sc, nil
}

// Validate checks every step against the bodies in reg.
func (sc *Scenario) Validate(reg *orbit.Registry) error {
	var errs []error
	for i, st := range sc.Steps {
		if err := st.validate(reg); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

func (st Step) validate(reg *orbit.Registry) error {
	switch st.Action {
	case ActionFollow, ActionInspect:
		if st.Body == "" {
			return fmt.Errorf("%s needs a body", st.Action)
		}
		if reg != nil && reg.Lookup(st.Body) == nil {
			return fmt.Errorf("unknown body: %s", st.Body)
		}
	case ActionSpeed:
		if st.Speed <= 0 {
			return fmt.Errorf("speed must be positive, got %g", st.Speed)
		}
	case ActionResize:
		if st.Width <= 0 || st.Height <= 0 {
			return fmt.Errorf("resize needs a positive size, got %dx%d", st.Width, st.Height)
		}
	case ActionHover, ActionClick, ActionWheel, ActionPause, ActionResume,
		ActionToggle, ActionFaster, ActionSlower, ActionReset, ActionDismiss:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, st.Action)
	}
	return nil
}

// Intents translates the step into intents. Follow and inspect address the
// body by name; hover and click go through picking like a pointer would.
func (st Step) Intents(reg *orbit.Registry) ([]sim.Intent, error) {
	switch st.Action {
	case ActionFollow, ActionInspect:
		if reg.Lookup(st.Body) == nil {
			return nil, fmt.Errorf("unknown body: %s", st.Body)
		}
		if st.Action == ActionInspect {
			return []sim.Intent{sim.Inspect{Body: st.Body}}, nil
		}
		return []sim.Intent{sim.Follow{Body: st.Body}}, nil
	case ActionHover:
		return []sim.Intent{sim.PointerMove{X: st.X, Y: st.Y}}, nil
	case ActionClick:
		return []sim.Intent{sim.PointerMove{X: st.X, Y: st.Y}, sim.Click{X: st.X, Y: st.Y}}, nil
	case ActionWheel:
		return []sim.Intent{sim.Wheel{Delta: st.Delta}}, nil
	case ActionPause:
		return []sim.Intent{sim.SetPaused{Paused: true}}, nil
	case ActionResume:
		return []sim.Intent{sim.SetPaused{Paused: false}}, nil
	case ActionToggle:
		return []sim.Intent{sim.TogglePause{}}, nil
	case ActionSpeed:
		return []sim.Intent{sim.SetSpeed{Multiplier: st.Speed}}, nil
	case ActionFaster:
		return []sim.Intent{sim.AdjustSpeed{Steps: max(st.Steps, 1)}}, nil
	case ActionSlower:
		return []sim.Intent{sim.AdjustSpeed{Steps: -max(st.Steps, 1)}}, nil
	case ActionReset:
		return []sim.Intent{sim.ResetView{}}, nil
	case ActionDismiss:
		return []sim.Intent{sim.Dismiss{}}, nil
	case ActionResize:
		return []sim.Intent{sim.Resize{Width: st.Width, Height: st.Height}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, st.Action)
}

// Player posts a scenario's steps to a running context. Attach it before
// the first frame.
type Player struct {
	c     *sim.Context
	steps []Step
	next  int
	log   logging.Logger
}

func NewPlayer(c *sim.Context, sc *Scenario, log logging.Logger) *Player {
	if log == nil {
		log = logging.Noop()
	}
	return &Player{c: c, steps: sc.Steps, log: log}
}

// Attach queues the steps due on the first frame and registers the player
// as an observer.
func (p *Player) Attach() {
	p.post(p.c.Last())
	p.c.AddObserver(p)
}

// OnFrame queues the steps due on the frame after f.
func (p *Player) OnFrame(f sim.Frame) { p.post(f) }

// Done reports whether every step has been posted.
func (p *Player) Done() bool { return p.next >= len(p.steps) }

func (p *Player) post(f sim.Frame) {
	due := f.Index + 1
	for p.next < len(p.steps) && p.steps[p.next].At <= due {
		st := p.steps[p.next]
		p.next++
		intents, err := st.Intents(p.c.Registry())
		if err != nil {
			p.log.Warn(context.Background(), "skipping scripted step", logging.Int("step", p.next), logging.Err(err))
			continue
		}
		p.log.Debug(context.Background(), "scripted step", logging.String("action", string(st.Action)), logging.Any("frame", due))
		for _, in := range intents {
			p.c.Post(in)
		}
	}
}
