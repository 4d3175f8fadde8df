// Package ledger derives per-counterparty balance summaries from the
// transaction log. Aggregation is a pure fold: identical inputs always
// produce identical outputs, recomputed from zero on every call.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tiptally-dev/tiptally/internal/identity"
	"github.com/tiptally-dev/tiptally/internal/model"
)

// Aggregate folds the log into one LedgerEntry per counterparty,
// keyed by the identity's display form on first appearance.
//
// Identities in self or excluded never get an entry. A transaction
// with exactly one self endpoint is attributed to the other party:
// money flowing from self to other counts as the other's received
// (they are in credit), money flowing the other way as their sent.
// Transactions between two non-self parties count double-entry style.
// Both-self transactions are tolerated and ignored entirely.
func Aggregate(log []model.Transaction, self, excluded *identity.Set) map[string]model.LedgerEntry {
	entries := make(map[string]*model.LedgerEntry)
	display := make(map[string]string)

	eligible := func(name string) (string, bool) {
		if self.Contains(name) || excluded.Contains(name) {
			return "", false
		}
		return model.CanonicalIdentity(name), true
	}

	// Initialize an entry for every eligible identity in the log, so
	// counterparties appear even when all their transactions involve
	// an excluded party.
	for _, tx := range log {
		for _, name := range [2]string{tx.From, tx.To} {
			key, ok := eligible(name)
			if !ok {
				continue
			}
			if _, seen := entries[key]; !seen {
				entries[key] = &model.LedgerEntry{}
				display[key] = strings.TrimSpace(name)
			}
		}
	}

	touch := func(key string, tx model.Transaction) *model.LedgerEntry {
		e := entries[key]
		if tx.Timestamp > e.LastActivity {
			e.LastActivity = tx.Timestamp
		}
		return e
	}

	for _, tx := range log {
		fromSelf := self.Contains(tx.From)
		toSelf := self.Contains(tx.To)

		switch {
		case fromSelf && toSelf:
			// Should not occur; tolerated.
		case fromSelf:
			if key, ok := eligible(tx.To); ok {
				e := touch(key, tx)
				e.Received = e.Received.Add(tx.Amount)
			}
		case toSelf:
			if key, ok := eligible(tx.From); ok {
				e := touch(key, tx)
				e.Sent = e.Sent.Add(tx.Amount)
			}
		default:
			if key, ok := eligible(tx.From); ok {
				e := touch(key, tx)
				e.Sent = e.Sent.Add(tx.Amount)
			}
			if key, ok := eligible(tx.To); ok {
				e := touch(key, tx)
				e.Received = e.Received.Add(tx.Amount)
			}
		}
	}

	out := make(map[string]model.LedgerEntry, len(entries))
	for key, e := range entries {
		out[display[key]] = *e
	}
	return out
}

// Totals sums the aggregate into the two headline figures: waitingOn
// is the sum of positive deltas (counterparties in credit), owed the
// absolute sum of negative deltas.
func Totals(aggregate map[string]model.LedgerEntry) (waitingOn, owed decimal.Decimal) {
	for _, e := range aggregate {
		delta := e.Delta()
		switch {
		case delta.IsPositive():
			waitingOn = waitingOn.Add(delta)
		case delta.IsNegative():
			owed = owed.Add(delta.Abs())
		}
	}
	return waitingOn, owed
}
