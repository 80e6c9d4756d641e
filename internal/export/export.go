// Package export turns a rendered frame into bytes: PNG through the software
// rasterizer or SVG markup.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/san-kum/orrery/internal/raster"
	"github.com/san-kum/orrery/internal/render"
	"github.com/san-kum/orrery/internal/sim"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

var ErrFormat = errors.New("export: unsupported format")

// ParseFormat accepts a format name or a file name with a known extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(s)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	switch Format(s) {
	case FormatPNG, FormatSVG:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, s)
}

func (f Format) Ext() string { return "." + string(f) }

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Frame renders f with the pipeline, including the HUD overlay when hud is
// non-nil, and returns the encoded bytes.
func Frame(format Format, p *render.Pipeline, scene render.Scene, f sim.Frame, hud *render.HUD) ([]byte, error) {
	switch format {
	case FormatPNG:
		c := raster.New(f.Width, f.Height)
		draw(p, c, scene, f, hud)
		var buf bytes.Buffer
		if err := EncodePNG(&buf, c.Image()); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatSVG:
		s := NewSVG(f.Width, f.Height)
		draw(p, s, scene, f, hud)
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrFormat, format)
}

func draw(p *render.Pipeline, s render.Surface, scene render.Scene, f sim.Frame, hud *render.HUD) {
	p.Draw(s, scene, f)
	if hud != nil {
		p.Overlay(s, f, *hud)
	}
}
