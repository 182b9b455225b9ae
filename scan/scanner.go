// Package scan runs the loops that feed the render queue: one over the
// persistent level, one over streamed levels and one that keeps the viewer's
// pose and settings current. Each loop owns its own directory and name cache.
package scan

import (
	"context"
	"time"

	"gosight/classify"
	"gosight/directory"
	"gosight/handlers"
	"gosight/process"
	"gosight/render"
	"gosight/world"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Source is the attached process as the loops see it.
type Source = directory.Source

// Options tune a level scanner.
type Options struct {
	// Interval is the pause between ticks. Zero runs ticks back to back.
	Interval time.Duration
	// Debug labels every entity near the viewer with its raw name.
	Debug bool
}

// Report summarises one tick.
type Report struct {
	Levels      int
	Entities    int
	Handled     int
	Draws       int
	Resolutions int
}

// Scanner walks a set of levels every tick and dispatches what it finds.
type Scanner struct {
	name   string
	levels func() ([]process.ProcessMemoryAddress, error)

	dir  *directory.Directory
	disp *classify.Dispatcher
	env  world.Env
	sink *countingSink
	opts Options

	log     *logger.Logger
	metrics *loopMetrics

	lastResolutions int
}

// NewPersistentScanner scans the world's persistent level.
func NewPersistentScanner(src Source, reg *classify.Registry, tracked *world.Tracked, q *render.Queue, opts Options) (*Scanner, error) {
	s, err := newScanner("persistent", src, reg, tracked, q, opts)
	if err != nil {
		return nil, err
	}
	s.levels = func() ([]process.ProcessMemoryAddress, error) {
		level, err := s.dir.PersistentLevel()
		if err != nil {
			return nil, err
		}
		return []process.ProcessMemoryAddress{level}, nil
	}
	return s, nil
}

// NewLevelScanner scans every streamed level after the persistent one.
func NewLevelScanner(src Source, reg *classify.Registry, tracked *world.Tracked, q *render.Queue, opts Options) (*Scanner, error) {
	s, err := newScanner("levels", src, reg, tracked, q, opts)
	if err != nil {
		return nil, err
	}
	s.levels = s.dir.SecondaryLevels
	return s, nil
}

func newScanner(name string, src Source, reg *classify.Registry, tracked *world.Tracked, q *render.Queue, opts Options) (*Scanner, error) {
	disp, err := classify.NewDispatcher(reg, name)
	if err != nil {
		return nil, err
	}
	metrics, err := newLoopMetrics(name)
	if err != nil {
		return nil, err
	}

	dir := directory.New(src, name)
	sink := &countingSink{next: q}
	log := logger.NewLogger(coloransi.Color(coloransi.Cyan, coloransi.Black, "scan-"+name))

	return &Scanner{
		name: name,
		dir:  dir,
		disp: disp,
		sink: sink,
		opts: opts,
		env: world.Env{
			Mem:      src,
			Layout:   src.Layout(),
			Names:    dir,
			Draw:     sink,
			Pose:     tracked,
			Platform: tracked,
			Params:   tracked,
			Islands:  tracked,
			Log:      log,
		},
		log:     log,
		metrics: metrics,
	}, nil
}

func (s *Scanner) Name() string { return s.name }

// Stats returns the dispatcher's running totals.
func (s *Scanner) Stats() classify.Stats { return s.disp.Stats() }

// Tick walks the current levels once. Read failures skip the level; they
// never end the tick early.
func (s *Scanner) Tick(ctx context.Context) Report {
	var r Report
	s.sink.n = 0

	levels, err := s.levels()
	if err != nil {
		s.log.Debugln("levels:", err)
	}

	for _, level := range levels {
		records, err := s.dir.Walk(level)
		if err != nil {
			s.log.Debugln("walk", level.ToString(), err)
			continue
		}
		r.Levels++
		r.Entities += len(records)

		for _, rec := range records {
			if s.opts.Debug {
				handlers.DebugName(&s.env, rec)
			}
			if s.disp.Dispatch(ctx, &s.env, rec) {
				r.Handled++
			}
		}
	}

	r.Draws = s.sink.n
	r.Resolutions = s.dir.Resolutions() - s.lastResolutions
	s.lastResolutions = s.dir.Resolutions()
	s.metrics.record(ctx, r)
	return r
}

// Run ticks until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	s.log.Infoln("started")
	defer s.log.Infoln("stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}
		s.Tick(ctx)
		if !pause(ctx, s.opts.Interval) {
			return nil
		}
	}
}

// pause waits d, returning false if ctx ends first.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
