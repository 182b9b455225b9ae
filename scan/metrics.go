package scan

import (
	"context"
	"fmt"

	"gosight/render"
	"gosight/world"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type loopMetrics struct {
	loop attribute.KeyValue

	seen        metric.Int64Counter
	pushed      metric.Int64Counter
	resolutions metric.Int64Counter
}

func newLoopMetrics(loop string) (*loopMetrics, error) {
	lm := &loopMetrics{loop: attribute.String("loop", loop)}
	m := meter()
	var err error

	lm.seen, err = m.Int64Counter(
		"scan.entities.seen",
		metric.WithDescription("Named entities returned by level walks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating seen counter: %w", err)
	}

	lm.pushed, err = m.Int64Counter(
		"scan.draws.pushed",
		metric.WithDescription("Draw instructions pushed to the render queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pushed counter: %w", err)
	}

	lm.resolutions, err = m.Int64Counter(
		"scan.names.resolved",
		metric.WithDescription("Name table lookups that went to the target"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resolutions counter: %w", err)
	}

	return lm, nil
}

func (lm *loopMetrics) record(ctx context.Context, r Report) {
	opt := metric.WithAttributes(lm.loop)
	lm.seen.Add(ctx, int64(r.Entities), opt)
	lm.pushed.Add(ctx, int64(r.Draws), opt)
	lm.resolutions.Add(ctx, int64(r.Resolutions), opt)
}

// countingSink forwards to the queue and counts what went through.
type countingSink struct {
	next world.DrawSink
	n    int
}

func (c *countingSink) Push(d render.DrawInstruction) {
	c.n++
	c.next.Push(d)
}
