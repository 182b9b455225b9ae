package classify

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"gosight/directory"
	"gosight/world"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Stats counts dispatch outcomes since the dispatcher was created.
type Stats struct {
	Exact    int64
	Fallback int64
	Ignored  int64
	Panics   int64
}

// Dispatcher hands records to handlers for one scan loop.
type Dispatcher struct {
	reg  *Registry
	log  *logger.Logger
	loop attribute.KeyValue

	dispatched metric.Int64Counter
	ignored    metric.Int64Counter
	panics     metric.Int64Counter

	exact, fallback, none, recovered atomic.Int64
}

// NewDispatcher uses the global meter; counters are no-ops unless a provider
// is installed.
func NewDispatcher(reg *Registry, loop string) (*Dispatcher, error) {
	d := &Dispatcher{
		reg:  reg,
		log:  logger.NewLogger(coloransi.Color(coloransi.Magenta, coloransi.Black, "classify-"+loop)),
		loop: attribute.String("loop", loop),
	}

	m := meter()
	var err error

	d.dispatched, err = m.Int64Counter(
		"classify.entities.dispatched",
		metric.WithDescription("Entities handed to a handler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatched counter: %w", err)
	}

	d.ignored, err = m.Int64Counter(
		"classify.entities.ignored",
		metric.WithDescription("Entities no handler claimed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ignored counter: %w", err)
	}

	d.panics, err = m.Int64Counter(
		"classify.handler.panics",
		metric.WithDescription("Handler panics recovered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating panic counter: %w", err)
	}

	return d, nil
}

// Dispatch classifies rec and runs its handler. It reports whether a handler
// ran. A panicking handler is logged and counted; it never escapes.
func (d *Dispatcher) Dispatch(ctx context.Context, env *world.Env, rec directory.EntityRecord) bool {
	key, h, kind := d.reg.Lookup(rec.Name)
	if kind == NoMatch {
		d.none.Add(1)
		d.ignored.Add(ctx, 1, metric.WithAttributes(d.loop))
		return false
	}

	if kind == Exact {
		d.exact.Add(1)
	} else {
		d.fallback.Add(1)
	}
	d.dispatched.Add(ctx, 1, metric.WithAttributes(d.loop,
		attribute.String("key", key), attribute.String("match", kind.String())))

	rec.Key = key
	d.run(ctx, h, env, rec)
	return true
}

func (d *Dispatcher) run(ctx context.Context, h Handler, env *world.Env, rec directory.EntityRecord) {
	defer func() {
		if r := recover(); r != nil {
			d.recovered.Add(1)
			d.panics.Add(ctx, 1, metric.WithAttributes(d.loop, attribute.String("key", rec.Key)))
			d.log.Warn(fmt.Sprintf("handler %s panicked on %s (%s): %v\n%s", rec.Key, rec.Name, rec.Address.ToString(), r, debug.Stack()))
		}
	}()
	h.Handle(env, rec)
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Exact:    d.exact.Load(),
		Fallback: d.fallback.Load(),
		Ignored:  d.none.Load(),
		Panics:   d.recovered.Load(),
	}
}
