package orbit

import "math"

// Vec2 is a point or offset on the drawing surface.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Dist returns the euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Polar returns the scaled cartesian displacement of a point at the given
// orbit distance and phase.
func Polar(distance, angle, scale float64) Vec2 {
	return Vec2{
		X: math.Cos(angle) * distance * scale,
		Y: math.Sin(angle) * distance * scale,
	}
}

// WorldToSurface maps an orbit position to surface coordinates:
// origin + polar(distance, angle)*zoom - offset.
func WorldToSurface(distance, angle float64, origin, offset Vec2, zoom float64) Vec2 {
	return origin.Add(Polar(distance, angle, zoom)).Sub(offset)
}

// FollowOffset is the camera offset that keeps b centered. A nil body yields
// the zero offset.
func FollowOffset(b *Body, zoom float64) Vec2 {
	if b == nil {
		return Vec2{}
	}
	return Polar(b.Distance, b.Angle, zoom)
}

// View is the per-frame transform from world to surface.
type View struct {
	Origin Vec2
	Offset Vec2
	Zoom   float64
}

// Center is the surface position of the central body.
func (v View) Center() Vec2 {
	return v.Origin.Sub(v.Offset)
}

// At maps an orbit around the central body to the surface.
func (v View) At(distance, angle float64) Vec2 {
	return WorldToSurface(distance, angle, v.Origin, v.Offset, v.Zoom)
}

// Body returns the rendered position of b.
func (v View) Body(b *Body) Vec2 {
	return v.At(b.Distance, b.Angle)
}

// Around maps an orbit around an arbitrary surface point, as used for
// satellites that circle their parent's rendered position.
func (v View) Around(center Vec2, distance, angle float64) Vec2 {
	return center.Add(Polar(distance, angle, v.Zoom))
}

// Scale converts a world length to surface pixels.
func (v View) Scale(length float64) float64 {
	return length * v.Zoom
}
