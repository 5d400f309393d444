// Package cache persists benchmark results between runs, keyed by the
// ordered pair of agents that produced them.
package cache

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Result is the outcome of benchmarking agent1 (playing role 1) against
// agent2 (playing role 2). The ratios need not sum to 1 since matches
// can end without a winner.
type Result struct {
	Agent1         string  `json:"agent1"`
	Agent1WinRatio float64 `json:"agent1_win_ratio"`
	Agent2         string  `json:"agent2"`
	Agent2WinRatio float64 `json:"agent2_win_ratio"`
	Iterations     int     `json:"iterations"`
}

// Key returns the ordered pair the result is stored under.
func (r Result) Key() Key {
	return Key{Agent1: r.Agent1, Agent2: r.Agent2}
}

// Key is an ordered agent pair. (a, b) and (b, a) are distinct keys.
type Key struct {
	Agent1 string
	Agent2 string
}

// Cache maps ordered agent pairs to their last benchmark result.
type Cache map[Key]Result

// New returns an empty Cache.
func New() Cache {
	return make(Cache)
}

// Lookup returns the stored result for (agent1, agent2).
func (c Cache) Lookup(agent1, agent2 string) (Result, bool) {
	r, ok := c[Key{Agent1: agent1, Agent2: agent2}]
	return r, ok
}

// Store inserts r, replacing any previous result for the same pair.
func (c Cache) Store(r Result) {
	c[r.Key()] = r
}

// Results returns all stored results ordered by agent names.
func (c Cache) Results() []Result {
	out := make([]Result, 0, len(c))
	for _, r := range c {
		out = append(out, r)
	}

	slices.SortFunc(out, func(a, b Result) int {
		return cmp.Or(
			cmp.Compare(a.Agent1, b.Agent1),
			cmp.Compare(a.Agent2, b.Agent2),
		)
	})

	return out
}

type snapshot struct {
	Results []Result `json:"results"`
}

// Load reads the cache file at path. A missing file yields an empty
// cache.
func Load(path string) (Cache, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", path, err)
	}

	c := New()
	for _, r := range snap.Results {
		c.Store(r)
	}

	return c, nil
}

// Save replaces the cache file at path with the full contents of c. The
// previous file stays intact if writing fails.
func Save(path string, c Cache) error {
	data, err := json.MarshalIndent(snapshot{Results: c.Results()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync cache: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace cache %s: %w", path, err)
	}

	return nil
}
