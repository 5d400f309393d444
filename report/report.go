// Package report formats benchmark results into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/weiihann/duelist/cache"
)

// Generate writes a markdown table with one row per ordered pair.
func Generate(w io.Writer, results []cache.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	// Header.
	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Agent 1 | Agent 2 | Matches | Agent 1 Wins "+
		"| Agent 2 Wins | No Decision |")
	fmt.Fprintln(w, "|---------|---------|---------|--------------"+
		"|--------------|-------------|")

	for _, r := range results {
		fmt.Fprintf(w, "| %s | %s | %d | %s | %s | %s |\n",
			r.Agent1,
			r.Agent2,
			r.Iterations,
			formatPercent(r.Agent1WinRatio),
			formatPercent(r.Agent2WinRatio),
			formatPercent(undecided(r)),
		)
	}

	fmt.Fprintln(w)

	// Per-agent totals across both roles.
	fmt.Fprintln(w, "| Agent | Role 1 Win Ratio | Role 2 Win Ratio |")
	fmt.Fprintln(w, "|-------|------------------|------------------|")

	for _, s := range standings(results) {
		fmt.Fprintf(w, "| %s | %s | %s |\n",
			s.agent,
			formatPercent(s.role1),
			formatPercent(s.role2),
		)
	}

	return nil
}

// GenerateJSON writes results as JSON to w.
func GenerateJSON(w io.Writer, results []cache.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

// undecided is the share of matches that produced no winner.
func undecided(r cache.Result) float64 {
	return math.Max(0, 1-r.Agent1WinRatio-r.Agent2WinRatio)
}

type standing struct {
	agent string
	role1 float64
	role2 float64
}

// standings averages each agent's win ratio per role, weighting every
// pairing by its number of matches. Agents keep first-seen order.
func standings(results []cache.Result) []standing {
	type tally struct {
		wins1, games1 float64
		wins2, games2 float64
	}

	var order []string
	tallies := make(map[string]*tally)

	get := func(name string) *tally {
		t, ok := tallies[name]
		if !ok {
			t = &tally{}
			tallies[name] = t
			order = append(order, name)
		}

		return t
	}

	for _, r := range results {
		n := float64(r.Iterations)

		t1 := get(r.Agent1)
		t1.wins1 += r.Agent1WinRatio * n
		t1.games1 += n

		t2 := get(r.Agent2)
		t2.wins2 += r.Agent2WinRatio * n
		t2.games2 += n
	}

	out := make([]standing, 0, len(order))
	for _, name := range order {
		t := tallies[name]
		out = append(out, standing{
			agent: name,
			role1: ratio(t.wins1, t.games1),
			role2: ratio(t.wins2, t.games2),
		})
	}

	return out
}

func ratio(wins, games float64) float64 {
	if games == 0 {
		return 0
	}

	return wins / games
}

func formatPercent(r float64) string {
	return fmt.Sprintf("%.2f%%", r*100)
}
