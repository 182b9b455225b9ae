// Package world holds the narrow capabilities handlers work through and the
// few values that outlive a single scan tick.
package world

import (
	"gosight/camera"
	"gosight/control"
	"gosight/process"
	"gosight/remote"
	"gosight/render"
)

type MemoryReader interface {
	process.Reader
}

type NameResolver interface {
	Resolve(id int32) (string, bool)
	ResolveAt(actor process.ProcessMemoryAddress) (string, bool)
}

type DrawSink interface {
	Push(d render.DrawInstruction)
}

// Viewer is everything known about the local player at one instant.
type Viewer struct {
	Pose       camera.Pose
	Viewport   camera.Viewport
	Controller process.ProcessMemoryAddress
	Pawn       process.ProcessMemoryAddress
}

type PoseProvider interface {
	Viewer() Viewer
}

// PlatformTracker remembers the movement of the ship the viewer stands on.
type PlatformTracker interface {
	Platform() remote.FRepMovement
	SetPlatform(m remote.FRepMovement)
}

type ParamsProvider interface {
	Params() control.Params
}

// IslandRegistry remembers where the island service object lives once a scan
// has seen it.
type IslandRegistry interface {
	IslandService() process.ProcessMemoryAddress
	SetIslandService(addr process.ProcessMemoryAddress)
}
