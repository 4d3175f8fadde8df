// Package ingest drives the page-at-a-time fetch loop: it pulls raw
// records from a PageSource, normalizes them, merges new transactions
// into the running log, and persists the result. One run at a time;
// the persisted log is only replaced on a successful run.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tiptally-dev/tiptally/internal/dedup"
	"github.com/tiptally-dev/tiptally/internal/identity"
	"github.com/tiptally-dev/tiptally/internal/ledger"
	"github.com/tiptally-dev/tiptally/internal/model"
	"github.com/tiptally-dev/tiptally/internal/normalize"
	"github.com/tiptally-dev/tiptally/internal/store"
)

// MaxPageLimit is the hard ceiling on pages per run. Caller-supplied
// limits above it are clamped, not rejected.
const MaxPageLimit = 1000

var (
	// ErrAlreadyRunning acknowledges a start request while a run is in
	// progress. A no-op, not a failure: no event is emitted and no
	// state is touched.
	ErrAlreadyRunning = errors.New("ingestion already running")

	// ErrInvalidPageLimit rejects a non-positive page limit before any
	// run starts.
	ErrInvalidPageLimit = errors.New("page limit must be at least 1")
)

// Options configures a single run.
type Options struct {
	// PageLimit bounds the number of pages processed. Must be >= 1;
	// values above MaxPageLimit are clamped.
	PageLimit int
	// Incremental seeds dedup from the persisted log and halts at the
	// first already-known record.
	Incremental bool
}

// Result summarizes a completed run.
type Result struct {
	RunID       string
	Incremental bool
	Pages       int
	NewCount    int
	Log         []model.Transaction
	Aggregate   map[string]model.LedgerEntry

	// Data-quality counters from normalization.
	DroppedAmount   int
	DroppedCurrency int
	FallbackDates   int
}

// Runner executes ingestion runs against one data directory. A Runner
// permits a single run at a time; concurrent Run calls beyond the
// first return ErrAlreadyRunning.
type Runner struct {
	store  *store.Store
	norm   *normalize.Normalizer
	sink   EventSink
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
}

// NewRunner creates a Runner over the given store, reporting events to
// sink and logging through logger.
func NewRunner(st *store.Store, sink EventSink, logger zerolog.Logger) *Runner {
	if sink == nil {
		sink = NopSink{}
	}
	return &Runner{
		store:  st,
		norm:   normalize.New(),
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// Run executes one ingestion run and returns its result. On adapter
// failure the accumulated log is discarded, a failure event is
// emitted, and the persisted state is left untouched.
func (r *Runner) Run(ctx context.Context, src PageSource, opts Options) (*Result, error) {
	if opts.PageLimit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageLimit, opts.PageLimit)
	}
	pageLimit := opts.PageLimit
	if pageLimit > MaxPageLimit {
		pageLimit = MaxPageLimit
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	runID := uuid.NewString()
	logger := r.logger.With().
		Str("run_id", runID).
		Bool("incremental", opts.Incremental).
		Logger()
	logger.Info().Int("page_limit", pageLimit).Msg("starting ingestion")

	state, err := r.store.Load()
	if err != nil {
		return nil, r.fail(logger, err)
	}

	// Full mode starts from an empty log and replaces the persisted
	// one wholesale; incremental mode extends it.
	var log []model.Transaction
	if opts.Incremental {
		log = state.Transactions
	}
	idx := dedup.NewIndex(log)

	result := &Result{RunID: runID, Incremental: opts.Incremental}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, r.fail(logger, fmt.Errorf("run canceled: %w", err))
		}

		records, err := src.CurrentPageRecords(ctx)
		if err != nil {
			return nil, r.fail(logger, fmt.Errorf("fetching page %d: %w", page, err))
		}

		norm := r.norm.Batch(records)
		result.DroppedAmount += norm.DroppedAmount
		result.DroppedCurrency += norm.DroppedCurrency
		result.FallbackDates += norm.FallbackDates

		fresh, seenKnown := idx.MergeBatch(norm.Transactions, opts.Incremental)
		log = append(log, fresh...)
		result.NewCount += len(fresh)
		result.Pages = page

		r.sink.Progress(ProgressEvent{
			Page:       page,
			NewCount:   result.NewCount,
			TotalCount: len(log),
		})
		logger.Debug().
			Int("page", page).
			Int("records", len(records)).
			Int("new", len(fresh)).
			Msg("page merged")

		if seenKnown {
			logger.Info().Int("page", page).Msg("known record encountered, stopping")
			break
		}
		if page >= pageLimit {
			break
		}
		if !src.HasMorePages(ctx) {
			break
		}
		advanced, err := src.AdvancePage(ctx)
		if err != nil {
			return nil, r.fail(logger, fmt.Errorf("advancing past page %d: %w", page, err))
		}
		if !advanced {
			// Indistinguishable from "no more pages" at this layer;
			// both terminate the loop as success.
			break
		}
	}

	state.Transactions = log
	state.LastUpdated = r.now().UnixMilli()
	if err := r.store.Save(state); err != nil {
		return nil, r.fail(logger, err)
	}

	result.Log = log
	result.Aggregate = ledger.Aggregate(log,
		identity.NewSet(state.SelfIdentities...),
		identity.NewSet(state.ExcludedIdentities...))

	r.sink.Completed(CompletionEvent{
		Log:                  log,
		Aggregate:            result.Aggregate,
		NewTransactionsCount: result.NewCount,
		Incremental:          opts.Incremental,
	})
	logger.Info().
		Int("pages", result.Pages).
		Int("new", result.NewCount).
		Int("total", len(log)).
		Msg("ingestion complete")

	return result, nil
}

func (r *Runner) fail(logger zerolog.Logger, err error) error {
	logger.Error().Err(err).Msg("ingestion failed")
	r.sink.Failed(FailureEvent{Reason: err.Error()})
	return err
}
