package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// Reporter receives rows the importer could not use.
type Reporter interface {
	SkipRow(file string, row int, reason string, err error)
}

// ZerologReporter logs skipped rows as warnings.
type ZerologReporter struct {
	Logger zerolog.Logger
}

// NewReporter wraps a zerolog.Logger.
func NewReporter(l zerolog.Logger) *ZerologReporter {
	return &ZerologReporter{Logger: l}
}

// SkipRow implements Reporter.
func (r *ZerologReporter) SkipRow(file string, row int, reason string, err error) {
	ev := r.Logger.Warn().Str("file", file).Int("row", row)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(reason)
}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) SkipRow(string, int, string, error) {}

// SkippedRow is one row recorded by a RecordingReporter.
type SkippedRow struct {
	File   string
	Row    int
	Reason string
	Err    error
}

// RecordingReporter keeps skipped rows in memory.
type RecordingReporter struct {
	mu   sync.Mutex
	rows []SkippedRow
}

// SkipRow implements Reporter.
func (r *RecordingReporter) SkipRow(file string, row int, reason string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, SkippedRow{File: file, Row: row, Reason: reason, Err: err})
}

// Rows returns a copy of the recorded rows.
func (r *RecordingReporter) Rows() []SkippedRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SkippedRow(nil), r.rows...)
}
