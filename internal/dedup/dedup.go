// Package dedup decides which scraped transactions are genuinely new
// and when an incremental run should halt.
package dedup

import "github.com/tiptally-dev/tiptally/internal/model"

// Index tracks the identity keys already present in the running log.
type Index struct {
	keys map[string]struct{}
}

// NewIndex seeds an index from an existing transaction log. Pass nil
// for a full run starting from an empty log.
func NewIndex(log []model.Transaction) *Index {
	idx := &Index{keys: make(map[string]struct{}, len(log))}
	for _, tx := range log {
		idx.keys[tx.IdentityKey()] = struct{}{}
	}
	return idx
}

// Len returns the number of distinct identity keys indexed.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// MergeBatch returns the genuinely-new transactions from one scraped
// page, in page order, and whether a known record was encountered.
//
// With haltOnKnown set (incremental mode), the first record whose key
// is already indexed stops consumption of the batch: pages are ordered
// newest-first, so everything behind a known record is already known.
// Records before the match are accepted and indexed.
//
// Without haltOnKnown (full mode), known keys are skipped and the rest
// of the batch is still consumed: first-seen wins across the run.
func (idx *Index) MergeBatch(batch []model.Transaction, haltOnKnown bool) (fresh []model.Transaction, seenKnown bool) {
	for _, tx := range batch {
		key := tx.IdentityKey()
		if _, known := idx.keys[key]; known {
			if haltOnKnown {
				return fresh, true
			}
			continue
		}
		idx.keys[key] = struct{}{}
		fresh = append(fresh, tx)
	}
	return fresh, false
}
