package scan

import (
	"context"
	"fmt"
	"time"

	"gosight/camera"
	"gosight/control"
	"gosight/process"
	"gosight/remote"
	"gosight/render"
	"gosight/world"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"go.opentelemetry.io/otel/metric"
)

// ViewerInterval is how often the viewer's pose is refreshed.
const ViewerInterval = time.Millisecond

const crosshairSize = 8

// ViewerUpdater keeps the tracked viewer pose and settings current and draws
// the crosshair.
type ViewerUpdater struct {
	src     Source
	tracked *world.Tracked
	box     *control.Mailbox
	draw    world.DrawSink
	log     *logger.Logger

	seen     uint64
	Interval time.Duration

	updates metric.Int64Counter
	applied metric.Int64Counter
}

func NewViewerUpdater(src Source, tracked *world.Tracked, box *control.Mailbox, draw world.DrawSink) (*ViewerUpdater, error) {
	u := &ViewerUpdater{
		src:      src,
		tracked:  tracked,
		box:      box,
		draw:     draw,
		log:      logger.NewLogger(coloransi.Color(coloransi.Green, coloransi.Black, "scan-viewer")),
		Interval: ViewerInterval,
	}

	m := meter()
	var err error
	u.updates, err = m.Int64Counter(
		"scan.viewer.updates",
		metric.WithDescription("Viewer poses read from the target"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating updates counter: %w", err)
	}
	u.applied, err = m.Int64Counter(
		"scan.params.applied",
		metric.WithDescription("Control records taken from the mailbox"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating applied counter: %w", err)
	}
	return u, nil
}

// Tick applies any newer control record, refreshes the pose and pushes the
// crosshair. A failed pose read keeps the previous pose.
func (u *ViewerUpdater) Tick(ctx context.Context) error {
	if p, seq, ok := u.box.Since(u.seen); ok {
		u.seen = seq
		u.tracked.SetParams(p)
		u.applied.Add(ctx, 1)
		u.log.Infoln("settings applied", seq)
	}

	prev := u.tracked.Viewer()
	center := prev.Viewport.Center()
	u.draw.Push(render.Marker(center.X, center.Y, crosshairSize, render.Green))

	v, err := u.read(prev.Viewport)
	if err != nil {
		return err
	}
	u.tracked.SetViewer(v)
	u.updates.Add(ctx, 1)
	return nil
}

func (u *ViewerUpdater) read(vp camera.Viewport) (world.Viewer, error) {
	lay := u.src.Layout()
	lp := lay.LocalPlayer

	w, err := u.src.World()
	if err != nil {
		return world.Viewer{}, fmt.Errorf("world: %w", err)
	}
	controller, err := remote.ReadChain(u.src, w, lay.World.GameInstance, lp.LocalPlayers, 0, lp.PlayerController)
	if err != nil {
		return world.Viewer{}, fmt.Errorf("controller: %w", err)
	}

	// no pawn while in menus or respawning
	pawn, err := remote.ReadPointer(u.src, controller.Add(process.ProcessMemorySize(lp.Pawn)))
	if err != nil {
		pawn = 0
	}

	cam, err := remote.ReadPointer(u.src, controller.Add(process.ProcessMemorySize(lp.CameraManager)))
	if err != nil {
		return world.Viewer{}, fmt.Errorf("camera manager: %w", err)
	}
	cache, err := remote.Read[remote.FCameraCacheEntry](u.src, cam.Add(process.ProcessMemorySize(lp.CameraCache)))
	if err != nil {
		return world.Viewer{}, err
	}

	return world.Viewer{
		Pose: camera.Pose{
			Position: cache.POV.Location.Vec3(),
			Rotation: cache.POV.Rotation.Rotator(),
			FOV:      float64(cache.POV.FOV) * float64(u.tracked.Params().FOVMultiplier),
		},
		Viewport:   vp,
		Controller: controller,
		Pawn:       pawn,
	}, nil
}

// Run ticks every Interval until ctx is cancelled.
func (u *ViewerUpdater) Run(ctx context.Context) error {
	u.log.Infoln("started")
	defer u.log.Infoln("stopped")

	failing := false
	for {
		if ctx.Err() != nil {
			return nil
		}
		err := u.Tick(ctx)
		if err != nil && !failing {
			u.log.Warn("viewer unavailable: ", err)
		}
		failing = err != nil
		if !pause(ctx, u.Interval) {
			return nil
		}
	}
}
