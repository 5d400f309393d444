// Package agent starts the external processes taking part in a match:
// the two agents and the game coordinator.
package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"

	"github.com/weiihann/duelist/config"
)

// Launcher spawns agent and coordinator processes.
type Launcher struct {
	Host        string
	Interpreter string
	GameScript  string
	TimeBudget  int
	GameArgs    []string
	Logger      *slog.Logger
}

// NewLauncher creates a Launcher from cfg.
func NewLauncher(cfg config.Config, logger *slog.Logger) *Launcher {
	return &Launcher{
		Host:        cfg.Host,
		Interpreter: cfg.Interpreter,
		GameScript:  cfg.Game.Script,
		TimeBudget:  cfg.Game.TimeBudget,
		GameArgs:    cfg.Game.ExtraArgs,
		Logger:      logger,
	}
}

// Process is a running child process. It is started in its own process
// group so Kill also takes down anything it spawned.
type Process struct {
	Name string

	cmd    *exec.Cmd
	stdout io.ReadCloser

	waitOnce sync.Once
}

// Pid returns the OS process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Stdout returns the captured standard output, or nil for processes
// whose output is discarded.
func (p *Process) Stdout() io.Reader {
	if p.stdout == nil {
		return nil
	}

	return p.stdout
}

// Kill force-terminates the process group and reaps the process. Killing
// a process that already exited is not an error.
func (p *Process) Kill() error {
	killErr := killGroup(p.cmd)

	// The exit status of a killed process carries no information.
	p.waitOnce.Do(func() {
		_ = p.cmd.Wait()
	})

	if killErr != nil {
		return fmt.Errorf("kill %s (pid %d): %w", p.Name, p.Pid(), killErr)
	}

	return nil
}

// StartAgent starts the named agent listening on host:port. Its output
// is discarded.
func (l *Launcher) StartAgent(
	ctx context.Context,
	name, port string,
) (*Process, error) {
	wrapped := WrapCommand(l.Interpreter, name)

	args := make([]string, 0, len(wrapped.Args)+4)
	args = append(args, wrapped.Args...)
	args = append(args, "-b", l.Host, "-p", port)

	cmd := l.command(ctx, wrapped.Binary, args)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start agent %s: %w", name, err)
	}

	l.Logger.DebugContext(ctx, "agent started",
		slog.String("agent", name),
		slog.String("port", port),
		slog.Int("pid", cmd.Process.Pid),
	)

	return &Process{Name: name, cmd: cmd}, nil
}

// StartGame starts the coordinator pointed at both agents. Its stdout is
// captured and stderr discarded.
func (l *Launcher) StartGame(
	ctx context.Context,
	port1, port2 string,
) (*Process, error) {
	wrapped := WrapCommand(l.Interpreter, l.GameScript)

	args := make([]string, 0, len(wrapped.Args)+len(l.GameArgs)+4)
	args = append(args, wrapped.Args...)
	args = append(args,
		l.endpoint(port1),
		l.endpoint(port2),
		"--time", strconv.Itoa(l.TimeBudget),
	)
	args = append(args, l.GameArgs...)

	cmd := l.command(ctx, wrapped.Binary, args)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe game stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start game %s: %w", l.GameScript, err)
	}

	l.Logger.DebugContext(ctx, "game started",
		slog.String("script", l.GameScript),
		slog.Int("pid", cmd.Process.Pid),
	)

	return &Process{Name: l.GameScript, cmd: cmd, stdout: stdout}, nil
}

func (l *Launcher) endpoint(port string) string {
	return "http://" + l.Host + ":" + port
}

func (l *Launcher) command(
	ctx context.Context,
	binary string,
	args []string,
) *exec.Cmd {
	cmd := exec.CommandContext(ctx, binary, args...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killGroup(cmd)
	}

	return cmd
}
