// Package bench runs repeated matches between ordered pairs of agents
// and turns them into win ratios.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/weiihann/duelist/cache"
	"github.com/weiihann/duelist/match"
	"github.com/weiihann/duelist/report"
)

// ErrNoIterations is returned when a benchmark is asked to play no
// matches.
var ErrNoIterations = errors.New("iterations must be positive")

// MatchPlayer plays one match with agent1 in role 1 and agent2 in role 2.
type MatchPlayer interface {
	Play(ctx context.Context, agent1, agent2 string) (match.Outcome, error)
}

// Recorder receives every finished match.
type Recorder interface {
	Record(o match.Outcome) error
}

// Executor benchmarks a single ordered pair.
type Executor struct {
	Player  MatchPlayer
	Printer *report.Printer
	History Recorder
	Logger  *slog.Logger
}

// NewExecutor creates an Executor. history may be nil.
func NewExecutor(
	player MatchPlayer,
	printer *report.Printer,
	history Recorder,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		Player:  player,
		Printer: printer,
		History: history,
		Logger:  logger,
	}
}

// Execute plays iterations independent matches and returns the win
// ratio of each side. Matches without a winner count for neither agent.
func (e *Executor) Execute(
	ctx context.Context,
	agent1, agent2 string,
	iterations int,
) (cache.Result, error) {
	if iterations <= 0 {
		return cache.Result{}, fmt.Errorf("%w: got %d", ErrNoIterations, iterations)
	}

	e.Printer.BenchmarkStarted(agent1, agent2, iterations)

	var wins1, wins2 int

	for i := 0; i < iterations; i++ {
		e.Printer.MatchStarted(agent1, agent2)

		out, err := e.Player.Play(ctx, agent1, agent2)
		if err != nil {
			return cache.Result{}, fmt.Errorf(
				"match %d/%d %s vs %s: %w", i+1, iterations, agent1, agent2, err,
			)
		}

		e.Printer.MatchFinished(out)

		switch out.Winner {
		case 1:
			wins1++
		case 2:
			wins2++
		}

		if e.History != nil {
			if err := e.History.Record(out); err != nil {
				e.Logger.WarnContext(ctx, "failed to record match",
					slog.String("error", err.Error()),
				)
			}
		}
	}

	result := cache.Result{
		Agent1:         agent1,
		Agent1WinRatio: float64(wins1) / float64(iterations),
		Agent2:         agent2,
		Agent2WinRatio: float64(wins2) / float64(iterations),
		Iterations:     iterations,
	}

	e.Printer.Result(result)

	e.Logger.InfoContext(ctx, "benchmark complete",
		slog.String("agent1", agent1),
		slog.String("agent2", agent2),
		slog.Int("iterations", iterations),
		slog.Int("agent1_wins", wins1),
		slog.Int("agent2_wins", wins2),
	)

	return result, nil
}
