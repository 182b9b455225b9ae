package remote

import (
	"unicode/utf16"

	"gosight/camera"
	"gosight/process"
)

// Value types below mirror the target's memory layout byte for byte. They are
// read with pod and must stay free of Go pointers.

// TArray is the engine's dynamic array header.
type TArray struct {
	Data  uint64
	Count int32
	Max   int32
}

func (a TArray) DataAddress() process.ProcessMemoryAddress {
	return process.ProcessMemoryAddress(a.Data)
}

// Valid reports whether the header looks like a live array.
func (a TArray) Valid() bool {
	return a.Data != 0 && a.Count >= 0 && a.Count <= a.Max
}

type FVector struct {
	X, Y, Z float32
}

func (v FVector) Vec3() camera.Vec3 {
	return camera.Vec3{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

type FRotator struct {
	Pitch, Yaw, Roll float32
}

func (r FRotator) Rotator() camera.Rotator {
	return camera.Rotator{Pitch: float64(r.Pitch), Yaw: float64(r.Yaw), Roll: float64(r.Roll)}
}

type FLocation struct {
	Location FVector
	Rotation FRotator
}

type FMinimalViewInfo struct {
	Location FVector
	Rotation FRotator
	_        [0x10]byte
	FOV      float32
}

// FCameraCacheEntry is the camera manager's last computed view.
type FCameraCacheEntry struct {
	TimeStamp float32
	_         [0xC]byte
	POV       FMinimalViewInfo
}

type FRepMovement struct {
	LinearVelocity  FVector
	AngularVelocity FVector
	Location        FVector
	Rotation        FRotator
}

// ACannon is the projectile block of a cannon actor.
type ACannon struct {
	ProjectileSpeed        float32
	ProjectileGravityScale float32
}

// FWorldMapIslandDataCaptureParams describes the orthographic capture that
// produced an island's map texture.
type FWorldMapIslandDataCaptureParams struct {
	CameraPosition           FVector
	CameraOrientation        FRotator
	WorldSpaceCameraPosition FVector
	CameraFOV                float32
	CameraAspect             float32
	CameraOrthoWidth         float32
	CameraNearClip           float32
	CameraFarClip            float32
	TextureWidth             int32
	TextureHeight            int32
}

// WideName is a fixed UTF-16 buffer.
type WideName struct {
	Word [64]uint16
}

func (w WideName) String() string {
	n := 0
	for n < len(w.Word) && w.Word[n] != 0 {
		n++
	}
	return string(utf16.Decode(w.Word[:n]))
}
