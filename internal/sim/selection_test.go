package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/sim"
)

func alignedConfig() *config.Config {
	cfg := config.DefaultConfig()
	for i := range cfg.Bodies {
		zero := 0.0
		cfg.Bodies[i].Angle = &zero
	}
	cfg.Field.Streak.Rate = 0
	cfg.Seed = 42
	return cfg
}

func clickOn(c *sim.Context, b *orbit.Body) sim.Frame {
	p := c.Last().View.Body(b)
	c.Post(sim.Click{X: p.X, Y: p.Y})
	return c.Frame()
}

func kinds(events []sim.Event) []sim.EventKind {
	out := make([]sim.EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

var _ = Describe("Selection", func() {
	var (
		ctx  *sim.Context
		mars *orbit.Body
	)

	BeforeEach(func() {
		ctx = sim.New(alignedConfig())
		mars = ctx.Registry().Lookup("Mars")
		Expect(mars).NotTo(BeNil())
	})

	Context("when nothing is followed", func() {
		It("follows the clicked body without pausing", func() {
			f := clickOn(ctx, mars)
			Expect(f.Followed).To(BeIdenticalTo(mars))
			Expect(f.Paused).To(BeFalse())
			Expect(kinds(f.Events)).To(Equal([]sim.EventKind{sim.EventFollow}))
		})

		It("ignores clicks on empty space", func() {
			ctx.Post(sim.Click{X: 1, Y: 1})
			f := ctx.Frame()
			Expect(f.Followed).To(BeNil())
			Expect(f.Events).To(BeEmpty())
		})
	})

	Context("when the clicked body is already followed", func() {
		BeforeEach(func() {
			clickOn(ctx, mars)
		})

		It("pauses and asks for its details", func() {
			f := clickOn(ctx, mars)
			Expect(f.Paused).To(BeTrue())
			Expect(f.Inspecting).To(BeIdenticalTo(mars))
			Expect(f.Events).To(ContainElement(sim.Event{
				Kind: sim.EventInspect,
				Body: "Mars",
				Fact: mars.Fact,
			}))
		})

		It("resumes when the details are dismissed", func() {
			clickOn(ctx, mars)
			ctx.Post(sim.Dismiss{})
			f := ctx.Frame()
			Expect(f.Paused).To(BeFalse())
			Expect(f.Inspecting).To(BeNil())
			Expect(kinds(f.Events)).To(Equal([]sim.EventKind{sim.EventDismiss, sim.EventResume}))
		})

		It("keeps the followed body centered", func() {
			for i := 0; i < 30; i++ {
				f := ctx.Frame()
				Expect(f.View.Body(mars).Dist(f.View.Origin)).To(BeNumerically("<", 1e-9))
			}
		})
	})

	Context("when another body is followed", func() {
		It("switches the camera target", func() {
			clickOn(ctx, mars)
			jupiter := ctx.Registry().Lookup("Jupiter")
			f := clickOn(ctx, jupiter)
			Expect(f.Followed).To(BeIdenticalTo(jupiter))
			Expect(f.Inspecting).To(BeNil())
		})
	})
})

var _ = Describe("Intent queue", func() {
	It("applies intents posted from other goroutines at the next frame", func() {
		ctx := sim.New(alignedConfig())
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 10; i++ {
				ctx.Post(sim.Wheel{Delta: -1})
			}
		}()
		<-done

		f := ctx.Frame()
		limits := ctx.Camera().Limits()
		want := limits.Default
		for i := 0; i < 10; i++ {
			want *= limits.Step
		}
		Expect(f.View.Zoom).To(BeNumerically("~", want, 1e-9))
	})
})

var _ = Describe("Streak lifecycle", func() {
	It("spawns at most one streak and retires it past the margin", func() {
		cfg := alignedConfig()
		cfg.Field.Streak.Rate = 1
		ctx := sim.New(cfg)

		f := ctx.Frame()
		Expect(kinds(f.Events)).To(ContainElement(sim.EventStreakSpawned))
		Expect(f.Streak.Active).To(BeTrue())

		start := f.Streak
		f = ctx.Frame()
		Expect(f.Streak.X).To(BeNumerically("~", start.X+start.VX, 1e-9))
		Expect(f.Streak.Y).To(BeNumerically("~", start.Y+start.VY, 1e-9))
		Expect(kinds(f.Events)).NotTo(ContainElement(sim.EventStreakSpawned))
	})
})
