package world

import (
	"sync"
	"sync/atomic"

	"gosight/camera"
	"gosight/control"
	"gosight/process"
	"gosight/remote"
)

// Tracked is the shared state between loops. Each value is replaced whole;
// readers never see a half-written pose.
type Tracked struct {
	viewerMu sync.RWMutex
	viewer   Viewer

	platformMu sync.RWMutex
	platform   remote.FRepMovement

	paramsMu sync.RWMutex
	params   control.Params

	islands atomic.Uint64
}

var (
	_ PoseProvider    = (*Tracked)(nil)
	_ PlatformTracker = (*Tracked)(nil)
	_ ParamsProvider  = (*Tracked)(nil)
	_ IslandRegistry  = (*Tracked)(nil)
)

func NewTracked(vp camera.Viewport, params control.Params) *Tracked {
	return &Tracked{
		viewer: Viewer{Viewport: vp},
		params: params,
	}
}

func (t *Tracked) Viewer() Viewer {
	t.viewerMu.RLock()
	defer t.viewerMu.RUnlock()
	return t.viewer
}

func (t *Tracked) SetViewer(v Viewer) {
	t.viewerMu.Lock()
	t.viewer = v
	t.viewerMu.Unlock()
}

func (t *Tracked) Platform() remote.FRepMovement {
	t.platformMu.RLock()
	defer t.platformMu.RUnlock()
	return t.platform
}

func (t *Tracked) SetPlatform(m remote.FRepMovement) {
	t.platformMu.Lock()
	t.platform = m
	t.platformMu.Unlock()
}

func (t *Tracked) Params() control.Params {
	t.paramsMu.RLock()
	defer t.paramsMu.RUnlock()
	return t.params
}

func (t *Tracked) SetParams(p control.Params) {
	t.paramsMu.Lock()
	t.params = p
	t.paramsMu.Unlock()
}

func (t *Tracked) IslandService() process.ProcessMemoryAddress {
	return process.ProcessMemoryAddress(t.islands.Load())
}

func (t *Tracked) SetIslandService(addr process.ProcessMemoryAddress) {
	t.islands.Store(uint64(addr))
}
