package match

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	name   string
	stdout io.Reader
	kills  *[]string
}

func (p *fakeProcess) Stdout() io.Reader { return p.stdout }

func (p *fakeProcess) Kill() error {
	*p.kills = append(*p.kills, p.name)
	return nil
}

type fakeLauncher struct {
	gameOutput string
	agentErr   map[string]error
	gameErr    error

	started []string
	ports   []string
	kills   []string
}

func (l *fakeLauncher) StartAgent(_ context.Context, name, port string) (Process, error) {
	if err := l.agentErr[name]; err != nil {
		return nil, err
	}
	l.started = append(l.started, name)
	l.ports = append(l.ports, port)

	return &fakeProcess{name: name, kills: &l.kills}, nil
}

func (l *fakeLauncher) StartGame(_ context.Context, port1, port2 string) (Process, error) {
	if l.gameErr != nil {
		return nil, l.gameErr
	}
	l.started = append(l.started, "game")
	l.ports = append(l.ports, port1, port2)

	return &fakeProcess{
		name:   "game",
		stdout: strings.NewReader(l.gameOutput),
		kills:  &l.kills,
	}, nil
}

func newTestRunner(l Launcher) *Runner {
	return NewRunner(l, [2]string{"8080", "8000"}, 0,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPlayWinner(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		wantState  State
		wantWinner int
		wantName   string
	}{
		{
			name:       "player 1",
			output:     "Game started\nPlayer 1 has won!\nshutting down\n",
			wantState:  EndedByWin,
			wantWinner: 1,
			wantName:   "alpha",
		},
		{
			name:       "player 2",
			output:     "Game started\nmove e4\nPlayer 2 has won!\n",
			wantState:  EndedByWin,
			wantWinner: 2,
			wantName:   "beta",
		},
		{
			name:       "stream closed",
			output:     "Game started\nagent 1 timed out\n",
			wantState:  EndedByStreamClose,
			wantWinner: NoWinner,
			wantName:   "",
		},
		{
			name:       "no output",
			output:     "",
			wantState:  EndedByStreamClose,
			wantWinner: NoWinner,
			wantName:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &fakeLauncher{gameOutput: tt.output}

			out, err := newTestRunner(l).Play(context.Background(), "alpha", "beta")
			require.NoError(t, err)

			assert.Equal(t, tt.wantState, out.State)
			assert.Equal(t, tt.wantWinner, out.Winner)
			assert.Equal(t, tt.wantName, out.WinnerName())
			assert.Equal(t, "alpha", out.Agent1)
			assert.Equal(t, "beta", out.Agent2)
			assert.NotEqual(t, uuid.Nil, out.ID)

			assert.Equal(t, []string{"alpha", "beta", "game"}, l.started)
			assert.Equal(t, []string{"8080", "8000", "8080", "8000"}, l.ports)
			assert.Equal(t, []string{"game", "alpha", "beta"}, l.kills)
		})
	}
}

func TestPlayKillsStartedAgentsOnSpawnFailure(t *testing.T) {
	spawnErr := errors.New("exec: no such file")

	t.Run("second agent", func(t *testing.T) {
		l := &fakeLauncher{agentErr: map[string]error{"beta": spawnErr}}

		_, err := newTestRunner(l).Play(context.Background(), "alpha", "beta")
		require.ErrorIs(t, err, spawnErr)
		assert.Equal(t, []string{"alpha"}, l.kills)
	})

	t.Run("game", func(t *testing.T) {
		l := &fakeLauncher{gameErr: spawnErr}

		_, err := newTestRunner(l).Play(context.Background(), "alpha", "beta")
		require.ErrorIs(t, err, spawnErr)
		assert.Equal(t, []string{"alpha", "beta"}, l.kills)
	})
}

func TestPlayCanceledDuringSettle(t *testing.T) {
	l := &fakeLauncher{gameOutput: "Player 1 has won!\n"}
	r := newTestRunner(l)
	r.SettleDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Play(ctx, "alpha", "beta")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"alpha", "beta"}, l.started)
	assert.Equal(t, []string{"alpha", "beta"}, l.kills)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "ended_by_win", EndedByWin.String())
	assert.Equal(t, "ended_by_stream_close", EndedByStreamClose.String())
	assert.Equal(t, "State(7)", State(7).String())
}
