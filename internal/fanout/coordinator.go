// internal/fanout/coordinator.go
// Package fanout dispatches one query to every configured source
// concurrently and joins the full set of results.
package fanout

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"omnisearch/internal/common/logger"
	"omnisearch/internal/common/metrics"
	"omnisearch/internal/sources"
)

// Aggregate is the joined outcome of one fan-out: exactly one result per
// configured source, keyed by source ID, with Order preserving the
// configured invocation order.
type Aggregate struct {
	Order   []sources.SourceID
	Results map[sources.SourceID]sources.SourceResult
	Elapsed time.Duration
}

// Succeeded returns the IDs of sources that produced usable items, in
// invocation order.
func (a *Aggregate) Succeeded() []sources.SourceID {
	var ids []sources.SourceID
	for _, id := range a.Order {
		if a.Results[id].OK() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Coordinator runs the per-query fan-out. It is safe for concurrent use;
// each Run works on its own result set.
type Coordinator struct {
	clients     []sources.Client
	timeout     time.Duration
	maxParallel int
	log         logger.Logger
}

type Config struct {
	PerSourceTimeout time.Duration
	// MaxParallel caps concurrent fetches; 0 means one goroutine per source.
	MaxParallel int
}

func New(clients []sources.Client, cfg Config, log logger.Logger) *Coordinator {
	return &Coordinator{
		clients:     clients,
		timeout:     cfg.PerSourceTimeout,
		maxParallel: cfg.MaxParallel,
		log:         log,
	}
}

// Run dispatches the query to every client and blocks until each has a
// terminal result. Source faults are absorbed into per-source results;
// Run itself fails only when the parent context is cancelled before the
// join completes.
func (c *Coordinator) Run(ctx context.Context, q sources.Query) (*Aggregate, error) {
	start := time.Now()

	agg := &Aggregate{
		Order:   make([]sources.SourceID, len(c.clients)),
		Results: make(map[sources.SourceID]sources.SourceResult, len(c.clients)),
	}
	results := make([]sources.SourceResult, len(c.clients))

	g, gctx := errgroup.WithContext(ctx)
	if c.maxParallel > 0 {
		g.SetLimit(c.maxParallel)
	}
	for i, client := range c.clients {
		agg.Order[i] = client.ID()
		g.Go(func() error {
			res := sources.Invoke(gctx, client, q, c.timeout)
			results[i] = res

			metrics.SourceFetches.WithLabelValues(string(client.ID()), string(res.Status)).Inc()
			metrics.SourceFetchDuration.WithLabelValues(string(client.ID())).Observe(res.Elapsed.Seconds())
			if !res.OK() {
				c.log.Warn("Source fetch did not succeed", map[string]interface{}{
					"source":    string(client.ID()),
					"status":    string(res.Status),
					"errorKind": string(res.ErrorKind),
					"elapsedMs": res.Elapsed.Milliseconds(),
				})
			}
			return nil
		})
	}
	// Workers never return errors; Wait only propagates parent cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, id := range agg.Order {
		agg.Results[id] = results[i]
	}
	agg.Elapsed = time.Since(start)
	metrics.FanoutDuration.Observe(agg.Elapsed.Seconds())

	c.log.Info("Fan-out complete", map[string]interface{}{
		"sources":   len(c.clients),
		"succeeded": len(agg.Succeeded()),
		"elapsedMs": agg.Elapsed.Milliseconds(),
	})
	return agg, nil
}
