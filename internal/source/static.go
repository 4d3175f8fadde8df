// Package source provides PageSource adapters: a static in-memory
// source for tests and snapshot replay, and an HTTP adapter for a
// paginated JSON endpoint.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tiptally-dev/tiptally/internal/normalize"
)

// Static serves pre-loaded pages from memory, newest-first like the
// live source.
type Static struct {
	pages [][]normalize.RawRecord
	cur   int
}

// NewStatic creates a Static source over the given pages.
func NewStatic(pages ...[]normalize.RawRecord) *Static {
	return &Static{pages: pages}
}

// LoadPages reads a replay file: a JSON array of pages, each an array
// of raw records.
func LoadPages(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading replay file: %w", err)
	}
	var pages [][]normalize.RawRecord
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("parsing replay file: %w", err)
	}
	return NewStatic(pages...), nil
}

// CurrentPageRecords returns the records on the current page.
func (s *Static) CurrentPageRecords(_ context.Context) ([]normalize.RawRecord, error) {
	if s.cur >= len(s.pages) {
		return nil, nil
	}
	return s.pages[s.cur], nil
}

// HasMorePages reports whether a page exists after the current one.
func (s *Static) HasMorePages(_ context.Context) bool {
	return s.cur+1 < len(s.pages)
}

// AdvancePage moves to the next page if one exists.
func (s *Static) AdvancePage(ctx context.Context) (bool, error) {
	if !s.HasMorePages(ctx) {
		return false, nil
	}
	s.cur++
	return true, nil
}
