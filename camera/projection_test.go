package camera

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullHD = Viewport{Width: 1920, Height: 1080}

func TestOrientation_Orthonormal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		pitch := rng.Float64()*360 - 180
		yaw := rng.Float64()*720 - 360
		roll := rng.Float64()*360 - 180

		m := Orientation(pitch, yaw, roll)
		rows := []Vec3{m.Forward, m.Right, m.Up}
		for a := range rows {
			assert.InDelta(t, 1, rows[a].Len(), 1e-6, "norm of row %d at (%v,%v,%v)", a, pitch, yaw, roll)
			for b := a + 1; b < len(rows); b++ {
				assert.InDelta(t, 0, rows[a].Dot(rows[b]), 1e-6, "rows %d,%d at (%v,%v,%v)", a, b, pitch, yaw, roll)
			}
		}
	}
}

func TestOrientation_Identity(t *testing.T) {
	m := Orientation(0, 0, 0)
	assert.InDelta(t, 1, m.Forward.X, 1e-12)
	assert.InDelta(t, 1, m.Right.Y, 1e-12)
	assert.InDelta(t, 1, m.Up.Z, 1e-12)
}

func TestWorldToScreen_CenterAhead(t *testing.T) {
	pose := Pose{FOV: 90}

	p, ok := WorldToScreen(Vec3{1000, 0, 0}, pose, fullHD)
	require.True(t, ok)
	assert.InDelta(t, 960, p.X, 1e-9)
	assert.InDelta(t, 540, p.Y, 1e-9)
}

func TestWorldToScreen_OriginAlwaysRejected(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		pose := Pose{
			Position: Vec3{rng.Float64()*1e4 - 5e3, rng.Float64()*1e4 - 5e3, rng.Float64() * 1e3},
			Rotation: Rotator{rng.Float64()*180 - 90, rng.Float64() * 360, 0},
			FOV:      60 + rng.Float64()*60,
		}
		_, ok := WorldToScreen(Vec3{}, pose, fullHD)
		assert.False(t, ok)
	}
}

func TestWorldToScreen_Idempotent(t *testing.T) {
	pose := Pose{Position: Vec3{10, -20, 30}, Rotation: Rotator{-5, 33, 2}, FOV: 95}
	target := Vec3{4000, 1500, 200}

	a, okA := WorldToScreen(target, pose, fullHD)
	b, okB := WorldToScreen(target, pose, fullHD)
	assert.Equal(t, okA, okB)
	assert.Equal(t, math.Float64bits(a.X), math.Float64bits(b.X))
	assert.Equal(t, math.Float64bits(a.Y), math.Float64bits(b.Y))
}

func TestWorldToScreen_Axes(t *testing.T) {
	pose := Pose{FOV: 90}

	// right of the view axis lands right of center, above lands above center
	right, ok := WorldToScreen(Vec3{1000, 100, 0}, pose, fullHD)
	require.True(t, ok)
	assert.Greater(t, right.X, 960.0)

	up, ok := WorldToScreen(Vec3{1000, 0, 100}, pose, fullHD)
	require.True(t, ok)
	assert.Less(t, up.Y, 540.0)

	// half way to the frustum edge with a 90 degree fov
	half, ok := WorldToScreen(Vec3{1000, 500, 0}, pose, fullHD)
	require.True(t, ok)
	assert.InDelta(t, 1440, half.X, 1e-6)
	assert.InDelta(t, 540, half.Y, 1e-9)
}

func TestWorldToScreen_OffscreenRejected(t *testing.T) {
	pose := Pose{FOV: 90}

	_, ok := WorldToScreen(Vec3{1000, 5000, 0}, pose, fullHD)
	assert.False(t, ok)

	// behind the camera is clamped to the near plane and thrown far off screen
	_, ok = WorldToScreen(Vec3{-1000, 300, 0}, pose, fullHD)
	assert.False(t, ok)
}

func TestWorldToScreen_NonFiniteRejected(t *testing.T) {
	_, ok := WorldToScreen(Vec3{math.NaN(), 0, 0}, Pose{FOV: 90}, fullHD)
	assert.False(t, ok)

	_, ok = WorldToScreen(Vec3{1000, math.Inf(1), 0}, Pose{FOV: 90}, fullHD)
	assert.False(t, ok)
}

func TestDistance(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{3, 4, 12}
	assert.InDelta(t, 13, Distance(a, b), 1e-12)
	assert.InDelta(t, 5, Distance2D(a, b), 1e-12)
	assert.InDelta(t, 13, Pose{Position: a}.DistanceTo(b), 1e-12)
}
