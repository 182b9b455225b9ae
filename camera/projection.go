// Package camera turns a viewer pose into screen coordinates.
//
// Rotations follow the engine's convention: degrees, pitch about the lateral
// axis, yaw about Z, roll about the view axis, X forward and Z up.
package camera

import "math"

// Rotator holds Euler angles in degrees.
type Rotator struct {
	Pitch, Yaw, Roll float64
}

// Matrix holds the three basis vectors of a view frame.
type Matrix struct {
	Forward, Right, Up Vec3
}

// Pose is a snapshot of the viewer: where the camera is, where it looks and
// its horizontal field of view in degrees.
type Pose struct {
	Position Vec3
	Rotation Rotator
	FOV      float64
}

func (p Pose) DistanceTo(target Vec3) float64 {
	return Distance(p.Position, target)
}

// Viewport is the target window size in pixels.
type Viewport struct {
	Width, Height float64
}

func (v Viewport) Center() Vec2 {
	return Vec2{v.Width / 2, v.Height / 2}
}

func (v Viewport) Contains(p Vec2) bool {
	return p.X >= 0 && p.X <= v.Width && p.Y >= 0 && p.Y <= v.Height
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Orientation builds the view frame for the given Euler angles.
func Orientation(pitch, yaw, roll float64) Matrix {
	sp, cp := math.Sincos(radians(pitch))
	sy, cy := math.Sincos(radians(yaw))
	sr, cr := math.Sincos(radians(roll))

	return Matrix{
		Forward: Vec3{cp * cy, cp * sy, sp},
		Right:   Vec3{sr*sp*cy - cr*sy, sr*sp*sy + cr*cy, -sr * cp},
		Up:      Vec3{-(cr*sp*cy + sr*sy), cy*sr - cr*sp*sy, cr * cp},
	}
}

// WorldToScreen projects target into the viewport. It reports false for the
// origin sentinel, for non-finite results and for points that land outside
// the window. Points behind the camera are pinned to the near plane.
func WorldToScreen(target Vec3, pose Pose, vp Viewport) (Vec2, bool) {
	if target.IsOrigin() {
		return Vec2{}, false
	}

	m := Orientation(pose.Rotation.Pitch, pose.Rotation.Yaw, pose.Rotation.Roll)
	delta := target.Sub(pose.Position)

	x := delta.Dot(m.Right)
	y := delta.Dot(m.Up)
	z := delta.Dot(m.Forward)
	if z < 1 {
		z = 1
	}

	t := math.Tan(pose.FOV * math.Pi / 360)
	center := vp.Center()
	scale := center.X / t

	screen := Vec2{
		X: center.X + x*scale/z,
		Y: center.Y - y*scale/z,
	}

	if !isFinite(screen.X) || !isFinite(screen.Y) {
		return Vec2{}, false
	}

	if !vp.Contains(screen) {
		return Vec2{}, false
	}

	return screen, true
}
