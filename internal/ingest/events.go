package ingest

import (
	"github.com/rs/zerolog"

	"github.com/tiptally-dev/tiptally/internal/model"
)

// ProgressEvent is emitted at least once per processed page.
type ProgressEvent struct {
	Page       int `json:"page"`
	NewCount   int `json:"newCount"`
	TotalCount int `json:"totalCount"`
}

// CompletionEvent is emitted once on a normal stop, after the merged
// log has been persisted.
type CompletionEvent struct {
	Log                  []model.Transaction          `json:"log"`
	Aggregate            map[string]model.LedgerEntry `json:"aggregate"`
	NewTransactionsCount int                          `json:"newTransactionsCount"`
	Incremental          bool                         `json:"incremental"`
}

// FailureEvent is emitted when a run terminates as Failed. The log as
// accumulated so far is not persisted.
type FailureEvent struct {
	Reason string `json:"reason"`
}

// EventSink receives run events. Implementations must not block; the
// loop calls them inline between pages.
type EventSink interface {
	Progress(ProgressEvent)
	Completed(CompletionEvent)
	Failed(FailureEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Progress(ProgressEvent)    {}
func (NopSink) Completed(CompletionEvent) {}
func (NopSink) Failed(FailureEvent)       {}

// LogSink forwards events to a zerolog logger.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Progress(e ProgressEvent) {
	s.Logger.Info().
		Int("page", e.Page).
		Int("new", e.NewCount).
		Int("total", e.TotalCount).
		Msg("page processed")
}

func (s LogSink) Completed(e CompletionEvent) {
	s.Logger.Info().
		Int("new", e.NewTransactionsCount).
		Int("total", len(e.Log)).
		Bool("incremental", e.Incremental).
		Msg("ingestion complete")
}

func (s LogSink) Failed(e FailureEvent) {
	s.Logger.Error().Str("reason", e.Reason).Msg("ingestion failed")
}
