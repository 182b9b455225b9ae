package world

import (
	"gosight/camera"
	"gosight/layout"
	"gosight/process"
	"gosight/remote"
	"gosight/render"

	"github.com/Moonlight-Companies/gologger/logger"
)

// Env is what a handler gets to work with. A scan loop builds one and passes
// it to every handler it dispatches.
type Env struct {
	Mem      MemoryReader
	Layout   *layout.Layout
	Names    NameResolver
	Draw     DrawSink
	Pose     PoseProvider
	Platform PlatformTracker
	Params   ParamsProvider
	Islands  IslandRegistry
	Log      *logger.Logger
}

func (e *Env) Off(addr process.ProcessMemoryAddress, off uint64) process.ProcessMemoryAddress {
	return addr.Add(process.ProcessMemorySize(off))
}

// Project maps a world point to the current viewport.
func (e *Env) Project(p camera.Vec3) (camera.Vec2, bool) {
	v := e.Pose.Viewer()
	return camera.WorldToScreen(p, v.Pose, v.Viewport)
}

// ActorLocation reads the location and rotation of an actor's root component.
func (e *Env) ActorLocation(actor process.ProcessMemoryAddress) (remote.FLocation, error) {
	a := e.Layout.Actor
	root, err := remote.ReadPointer(e.Mem, e.Off(actor, a.RootComponent))
	if err != nil {
		return remote.FLocation{}, err
	}
	return remote.Read[remote.FLocation](e.Mem, e.Off(root, a.RelativeLocation))
}

// Movement reads an actor's replicated movement, zero when unreadable.
func (e *Env) Movement(actor process.ProcessMemoryAddress) remote.FRepMovement {
	m, err := remote.Read[remote.FRepMovement](e.Mem, e.Off(actor, e.Layout.Actor.ReplicatedMovement))
	if err != nil {
		e.Log.Debugln("movement", actor.ToString(), err)
	}
	return m
}

// Emit projects p and pushes d anchored there. It reports whether anything
// was drawn.
func (e *Env) Emit(p camera.Vec3, d render.DrawInstruction) bool {
	s, ok := e.Project(p)
	if !ok {
		return false
	}
	d.X, d.Y = s.X, s.Y
	e.Draw.Push(d)
	return true
}
