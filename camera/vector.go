package camera

import "math"

// Vec3 is a world-space point or direction in engine units (centimetres).
type Vec3 struct {
	X, Y, Z float64
}

type Vec2 struct {
	X, Y float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Len2D is the length of the horizontal component.
func (v Vec3) Len2D() float64 { return math.Hypot(v.X, v.Y) }

// IsOrigin reports exact equality with (0,0,0), the value an unset foreign
// location reads as.
func (v Vec3) IsOrigin() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func Distance(a, b Vec3) float64 { return a.Sub(b).Len() }

// Distance2D ignores height.
func Distance2D(a, b Vec3) float64 { return a.Sub(b).Len2D() }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
