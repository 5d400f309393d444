// Package match plays a single game between two agents.
package match

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/weiihann/duelist/agent"
	"github.com/weiihann/duelist/gamelog"
)

// NoWinner is the winner recorded when the coordinator stops without
// announcing one.
const NoWinner = -1

// State is the phase of a match.
type State int

const (
	Running State = iota
	EndedByWin
	EndedByStreamClose
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case EndedByWin:
		return "ended_by_win"
	case EndedByStreamClose:
		return "ended_by_stream_close"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Process is a started agent or coordinator.
type Process interface {
	Stdout() io.Reader
	Kill() error
}

// Launcher starts the processes of a match.
type Launcher interface {
	StartAgent(ctx context.Context, name, port string) (Process, error)
	StartGame(ctx context.Context, port1, port2 string) (Process, error)
}

// Outcome describes a finished match.
type Outcome struct {
	ID        uuid.UUID
	Agent1    string
	Agent2    string
	Ports     [2]string
	State     State
	Winner    int
	StartedAt time.Time
	Duration  time.Duration
}

// WinnerName returns the name of the winning agent, or "" when the
// match had no winner.
func (o Outcome) WinnerName() string {
	switch o.Winner {
	case 1:
		return o.Agent1
	case 2:
		return o.Agent2
	default:
		return ""
	}
}

// Runner plays matches one at a time on a fixed pair of ports.
type Runner struct {
	Launcher    Launcher
	Ports       [2]string
	SettleDelay time.Duration
	Logger      *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(
	launcher Launcher,
	ports [2]string,
	settleDelay time.Duration,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		Launcher:    launcher,
		Ports:       ports,
		SettleDelay: settleDelay,
		Logger:      logger,
	}
}

// Play starts agent1 and agent2, waits for them to bind their ports,
// starts the coordinator and reads its log until the match is decided or
// the log closes. All started processes are killed before Play returns.
// Only spawn failures and context cancellation are errors.
func (r *Runner) Play(
	ctx context.Context,
	agent1, agent2 string,
) (Outcome, error) {
	out := Outcome{
		ID:        uuid.New(),
		Agent1:    agent1,
		Agent2:    agent2,
		Ports:     r.Ports,
		State:     Running,
		Winner:    NoWinner,
		StartedAt: time.Now(),
	}

	logger := r.Logger.With(
		slog.String("match_id", out.ID.String()),
		slog.String("agent1", agent1),
		slog.String("agent2", agent2),
	)

	var procs []Process
	defer func() {
		for _, p := range procs {
			if err := p.Kill(); err != nil {
				logger.Warn("cleanup failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}()

	p1, err := r.Launcher.StartAgent(ctx, agent1, r.Ports[0])
	if err != nil {
		return out, err
	}
	procs = append(procs, p1)

	p2, err := r.Launcher.StartAgent(ctx, agent2, r.Ports[1])
	if err != nil {
		return out, err
	}
	procs = append(procs, p2)

	if err := sleep(ctx, r.SettleDelay); err != nil {
		return out, err
	}

	game, err := r.Launcher.StartGame(ctx, r.Ports[0], r.Ports[1])
	if err != nil {
		return out, err
	}
	// The coordinator is killed first.
	procs = append([]Process{game}, procs...)

	events := gamelog.NewReader(game.Stdout(), logger)

	for out.State == Running {
		switch ev := events.Next().(type) {
		case gamelog.GameEnded:
			out.State = EndedByWin
			out.Winner = ev.Winner
		case gamelog.EndOfStream:
			out.State = EndedByStreamClose
		case gamelog.None:
		}
	}

	out.Duration = time.Since(out.StartedAt)

	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("match interrupted: %w", err)
	}

	logger.Info("match finished",
		slog.String("state", out.State.String()),
		slog.Int("winner", out.Winner),
		slog.Duration("duration", out.Duration),
	)

	return out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type processLauncher struct {
	l *agent.Launcher
}

// FromAgentLauncher adapts an agent.Launcher to a Launcher.
func FromAgentLauncher(l *agent.Launcher) Launcher {
	return processLauncher{l: l}
}

func (p processLauncher) StartAgent(
	ctx context.Context,
	name, port string,
) (Process, error) {
	proc, err := p.l.StartAgent(ctx, name, port)
	if err != nil {
		return nil, err
	}

	return proc, nil
}

func (p processLauncher) StartGame(
	ctx context.Context,
	port1, port2 string,
) (Process, error) {
	proc, err := p.l.StartGame(ctx, port1, port2)
	if err != nil {
		return nil, err
	}

	return proc, nil
}
