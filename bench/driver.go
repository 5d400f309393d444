package bench

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weiihann/duelist/cache"
	"github.com/weiihann/duelist/report"
)

// Pairings returns every ordered pair of distinct agents, each unordered
// pair followed immediately by its reversal: for [a b c] that is
// (a,b) (b,a) (a,c) (c,a) (b,c) (c,b).
func Pairings(agents []string) []cache.Key {
	var keys []cache.Key

	for i := range agents {
		for j := i + 1; j < len(agents); j++ {
			if agents[i] == agents[j] {
				continue
			}

			keys = append(keys,
				cache.Key{Agent1: agents[i], Agent2: agents[j]},
				cache.Key{Agent1: agents[j], Agent2: agents[i]},
			)
		}
	}

	return keys
}

// Driver benchmarks every pairing of a list of agents, skipping pairings
// already in the cache.
type Driver struct {
	Executor  *Executor
	Printer   *report.Printer
	CachePath string
	Logger    *slog.Logger
}

// NewDriver creates a Driver persisting results at cachePath.
func NewDriver(
	executor *Executor,
	printer *report.Printer,
	cachePath string,
	logger *slog.Logger,
) *Driver {
	return &Driver{
		Executor:  executor,
		Printer:   printer,
		CachePath: cachePath,
		Logger:    logger,
	}
}

// Start loads the cache, runs all pairings and saves the cache once at
// the end. Nothing is saved when the run fails part way.
func (d *Driver) Start(
	ctx context.Context,
	agents []string,
	iterations int,
	ignoreCache bool,
) ([]cache.Result, error) {
	c, err := cache.Load(d.CachePath)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}

	d.Logger.InfoContext(ctx, "cache loaded",
		slog.String("path", d.CachePath),
		slog.Int("entries", len(c)),
	)

	results, err := d.Run(ctx, c, agents, iterations, ignoreCache)
	if err != nil {
		return nil, err
	}

	if err := cache.Save(d.CachePath, c); err != nil {
		return nil, fmt.Errorf("save cache: %w", err)
	}

	d.Logger.InfoContext(ctx, "cache saved",
		slog.String("path", d.CachePath),
		slog.Int("entries", len(c)),
	)

	return results, nil
}

// Run benchmarks both orderings of every agent pair against c, storing
// fresh results into it. Cached pairings are reported instead of run
// unless ignoreCache is set. It returns the result of every pairing in
// order.
func (d *Driver) Run(
	ctx context.Context,
	c cache.Cache,
	agents []string,
	iterations int,
	ignoreCache bool,
) ([]cache.Result, error) {
	pairings := Pairings(agents)
	results := make([]cache.Result, 0, len(pairings))

	for _, key := range pairings {
		if cached, ok := c.Lookup(key.Agent1, key.Agent2); ok && !ignoreCache {
			d.Logger.DebugContext(ctx, "using cached result",
				slog.String("agent1", key.Agent1),
				slog.String("agent2", key.Agent2),
			)
			d.Printer.Cached(cached)

			results = append(results, cached)

			continue
		}

		result, err := d.Executor.Execute(ctx, key.Agent1, key.Agent2, iterations)
		if err != nil {
			return nil, fmt.Errorf("benchmark %s vs %s: %w",
				key.Agent1, key.Agent2, err)
		}

		c.Store(result)
		results = append(results, result)
	}

	return results, nil
}
