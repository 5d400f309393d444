// Package history appends one JSONL record per played match, so long
// benchmark runs can be inspected match by match afterwards.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/weiihann/duelist/match"
)

// Record is a single match in the history file.
type Record struct {
	MatchID    string    `json:"match_id"`
	Agent1     string    `json:"agent1"`
	Agent2     string    `json:"agent2"`
	Ports      [2]string `json:"ports"`
	State      string    `json:"state"`
	Winner     int       `json:"winner"`
	WinnerName string    `json:"winner_name,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// Summary counts the records written by a Recorder.
type Summary struct {
	Matches   int
	Decided   int
	Undecided int
}

// Recorder writes match records to an underlying writer.
type Recorder struct {
	enc     *json.Encoder
	closer  io.Closer
	summary Summary
}

// NewRecorder writes records to w.
func NewRecorder(w io.Writer) *Recorder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	return &Recorder{enc: enc}
}

// Open appends records to the file at path, creating it if needed.
func Open(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}

	r := NewRecorder(f)
	r.closer = f

	return r, nil
}

// Record appends the outcome of one match.
func (r *Recorder) Record(o match.Outcome) error {
	rec := Record{
		MatchID:    o.ID.String(),
		Agent1:     o.Agent1,
		Agent2:     o.Agent2,
		Ports:      o.Ports,
		State:      o.State.String(),
		Winner:     o.Winner,
		WinnerName: o.WinnerName(),
		StartedAt:  o.StartedAt.UTC(),
		DurationMs: o.Duration.Milliseconds(),
	}

	if err := r.enc.Encode(rec); err != nil {
		return fmt.Errorf("encode match %s: %w", rec.MatchID, err)
	}

	r.summary.Matches++
	if o.State == match.EndedByWin {
		r.summary.Decided++
	} else {
		r.summary.Undecided++
	}

	return nil
}

// Summary returns the counts of records written so far.
func (r *Recorder) Summary() Summary {
	return r.summary
}

// Close closes the history file opened by Open.
func (r *Recorder) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}
