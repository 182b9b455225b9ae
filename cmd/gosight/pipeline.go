package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gosight/camera"
	"gosight/config"
	"gosight/control"
	"gosight/handlers"
	"gosight/layout"
	"gosight/remote"
	"gosight/render"
	"gosight/scan"
	"gosight/termview"
	"gosight/world"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
)

const queueCapacity = 512

var log = logger.NewLogger(coloransi.Color(coloransi.BrightWhite, coloransi.Blue, "gosight"))

func loadLayout(s config.Settings) (*layout.Layout, error) {
	if s.Layout == "" {
		return layout.Default(), nil
	}
	return layout.Load(s.Layout)
}

// rendererFor resolves "auto" to the terminal preview when stdout is a
// terminal.
func rendererFor(name string) string {
	if name != config.RendererAuto {
		return name
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return config.RendererTerminal
	}
	return config.RendererHeadless
}

// runPipeline starts the scan loops, the control server and a renderer, and
// blocks until ctx ends or the preview is closed.
func runPipeline(ctx context.Context, acc *remote.Accessor, s config.Settings) error {
	params, err := config.Params()
	if err != nil {
		return err
	}

	vp := camera.Viewport{Width: float64(s.Window.Width), Height: float64(s.Window.Height)}
	tracked := world.NewTracked(vp, params)
	queue := render.NewQueue(queueCapacity)
	box := control.NewMailbox()
	reg := handlers.Registry()
	opts := scan.Options{Interval: s.Scan.Interval, Debug: s.Scan.Debug}

	persistent, err := scan.NewPersistentScanner(acc, reg, tracked, queue, opts)
	if err != nil {
		return err
	}
	viewer, err := scan.NewViewerUpdater(acc, tracked, box, queue)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return persistent.Run(ctx) })
	g.Go(func() error { return viewer.Run(ctx) })

	if s.Scan.Levels {
		levels, err := scan.NewLevelScanner(acc, reg, tracked, queue, opts)
		if err != nil {
			return err
		}
		g.Go(func() error { return levels.Run(ctx) })
	}

	if s.Control.Enabled {
		srv := control.NewServer(s.Control.Addr, box)
		g.Go(func() error { return srv.Run(ctx) })
	}

	switch r := rendererFor(s.Renderer); r {
	case config.RendererTerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		defer screen.Fini()
		view := termview.New(screen, queue, vp)
		g.Go(func() error { return view.Run(ctx) })
	default:
		g.Go(func() error { return termview.Headless(ctx, queue, termview.FrameInterval) })
	}

	log.Infoln("running against", acc.Handle().String(), "layout", acc.Layout().Build)
	err = g.Wait()
	if errors.Is(err, termview.ErrQuit) {
		return nil
	}
	return err
}
