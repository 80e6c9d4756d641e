package config

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	ErrNoBodies      = errors.New("config: no bodies configured")
	ErrDuplicateBody = errors.New("config: duplicate body name")
	ErrHomeBody      = errors.New("config: home body not found")
	ErrZoomBounds    = errors.New("config: invalid zoom bounds")
	ErrSpeedBounds   = errors.New("config: invalid speed bounds")
	ErrColor         = errors.New("config: invalid color")
	ErrWindow        = errors.New("config: invalid window")
	ErrEpoch         = errors.New("config: invalid epoch")
	ErrStreak        = errors.New("config: invalid streak")
)

// Validate checks the configuration for values the simulation cannot run
// with. The first problem found is returned.
func (c *Config) Validate() error {
	if len(c.Bodies) == 0 {
		return ErrNoBodies
	}
	seen := make(map[string]bool, len(c.Bodies))
	for _, b := range c.Bodies {
		if seen[b.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateBody, b.Name)
		}
		seen[b.Name] = true
		if err := checkColor(b.Name, b.Color); err != nil {
			return err
		}
	}
	if c.Home != "" && !seen[c.Home] {
		return fmt.Errorf("%w: %q", ErrHomeBody, c.Home)
	}
	for _, kv := range [][2]string{
		{"satellite", c.Satellite.Color},
		{"sun", c.Sun.Color},
		{"sun halo", c.Sun.Halo},
	} {
		if err := checkColor(kv[0], kv[1]); err != nil {
			return err
		}
	}

	cam := c.Camera
	if cam.MinZoom <= 0 || cam.MaxZoom < cam.MinZoom || cam.Step <= 1 {
		return fmt.Errorf("%w: min=%g max=%g step=%g", ErrZoomBounds, cam.MinZoom, cam.MaxZoom, cam.Step)
	}
	if cam.Zoom < cam.MinZoom || cam.Zoom > cam.MaxZoom {
		return fmt.Errorf("%w: default %g outside [%g, %g]", ErrZoomBounds, cam.Zoom, cam.MinZoom, cam.MaxZoom)
	}

	sp := c.Speed
	if sp.Min < 0 || sp.Max < sp.Min || sp.Default < sp.Min || sp.Default > sp.Max {
		return fmt.Errorf("%w: default=%g range=[%g, %g]", ErrSpeedBounds, sp.Default, sp.Min, sp.Max)
	}

	// retirement only checks x, so a streak without drift would never leave
	st := c.Field.Streak
	if st.Rate < 0 || st.Rate > 1 || (st.Rate > 0 && (st.Drift <= 0 || st.Fall <= 0)) {
		return fmt.Errorf("%w: rate=%g drift=%g fall=%g", ErrStreak, st.Rate, st.Drift, st.Fall)
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 || c.Window.FPS <= 0 {
		return fmt.Errorf("%w: %dx%d at %d fps", ErrWindow, c.Window.Width, c.Window.Height, c.Window.FPS)
	}
	if c.Epoch != "" {
		if _, ok := c.EpochTime(); !ok {
			return fmt.Errorf("%w: %q", ErrEpoch, c.Epoch)
		}
	}
	return nil
}

func checkColor(owner, hex string) error {
	if _, err := colorful.Hex(hex); err != nil {
		return fmt.Errorf("%w: %s %q", ErrColor, owner, hex)
	}
	return nil
}
