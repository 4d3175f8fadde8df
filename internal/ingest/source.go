package ingest

import (
	"context"

	"github.com/tiptally-dev/tiptally/internal/normalize"
)

// PageSource produces the transaction records visible on the current
// page of an external, untrusted source and advances through pages on
// demand. How a page is located or rendered is opaque to the loop;
// only these three operations matter.
//
// AdvancePage returning false is a reliable terminal signal. An error
// from CurrentPageRecords or AdvancePage is an adapter failure and
// terminates the run without persisting.
type PageSource interface {
	// CurrentPageRecords returns whatever is presently visible; may be
	// empty.
	CurrentPageRecords(ctx context.Context) ([]normalize.RawRecord, error)

	// HasMorePages is a best-effort signal that another page exists.
	HasMorePages(ctx context.Context) bool

	// AdvancePage attempts to move to the next page and reports
	// whether it succeeded. It may wait internally for page content.
	AdvancePage(ctx context.Context) (bool, error)
}
