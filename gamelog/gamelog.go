// Package gamelog classifies the game coordinator's log output.
//
// The coordinator has no structured protocol; a match is decided when it
// prints a line containing "Player <N> has won!" with N being 1 or 2.
// Every other line is ignored.
package gamelog

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Event is the result of reading one line of coordinator output. It is
// one of None, EndOfStream or GameEnded.
type Event interface {
	event()
}

// None means the line read carried no decision.
type None struct{}

// EndOfStream means the coordinator closed its output without a decision.
type EndOfStream struct{}

// GameEnded means a winner was announced.
type GameEnded struct {
	// Winner is the role of the winning agent, 1 or 2.
	Winner int
}

func (None) event()        {}
func (EndOfStream) event() {}
func (GameEnded) event()   {}

var winPattern = regexp.MustCompile(`Player ([12]) has won!`)

// Classify maps a single log line to None or GameEnded.
func Classify(line string) Event {
	m := winPattern.FindStringSubmatch(line)
	if m == nil {
		return None{}
	}

	winner, _ := strconv.Atoi(m[1])

	return GameEnded{Winner: winner}
}

// Reader extracts events from a coordinator's stdout, one line per call.
type Reader struct {
	r      *bufio.Reader
	logger *slog.Logger
}

// NewReader wraps the coordinator output r.
func NewReader(r io.Reader, logger *slog.Logger) *Reader {
	return &Reader{
		r:      bufio.NewReader(r),
		logger: logger,
	}
}

// Next blocks until a line is available or the stream closes. A final
// unterminated line is still classified before EndOfStream is reported.
func (r *Reader) Next() Event {
	line, err := r.r.ReadString('\n')

	if line != "" {
		line = strings.TrimRight(line, "\r\n")
		r.logger.Debug("game log", slog.String("line", line))

		return Classify(line)
	}

	if err != nil && !errors.Is(err, io.EOF) {
		r.logger.Warn("read game log",
			slog.String("error", err.Error()),
		)
	}

	return EndOfStream{}
}
