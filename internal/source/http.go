package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tiptally-dev/tiptally/internal/normalize"
)

// DefaultTimeout bounds a single page request when no timeout is
// configured.
const DefaultTimeout = 30 * time.Second

// HTTP pulls pages from a paginated JSON endpoint. Each page is
// fetched with GET <url>?page=N and must answer
//
//	{"records": [{"from": ..., "to": ..., "amount": ..., "currency_hint": ..., "date": ...}], "has_more": bool}
//
// The adapter caches the current page, so repeated CurrentPageRecords
// calls do not re-fetch.
type HTTP struct {
	client *http.Client
	base   *url.URL

	page    int
	fetched bool
	records []normalize.RawRecord
	hasMore bool
}

type pageResponse struct {
	Records []normalize.RawRecord `json:"records"`
	HasMore bool                  `json:"has_more"`
}

// NewHTTP creates an HTTP source for the given endpoint. A zero
// timeout falls back to DefaultTimeout.
func NewHTTP(rawURL string, timeout time.Duration) (*HTTP, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing source url: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		client: &http.Client{Timeout: timeout},
		base:   base,
		page:   1,
	}, nil
}

func (h *HTTP) fetch(ctx context.Context) error {
	u := *h.base
	q := u.Query()
	q.Set("page", strconv.Itoa(h.page))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building page request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching page %d: %w", h.page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching page %d: unexpected status %s", h.page, resp.Status)
	}

	var body pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding page %d: %w", h.page, err)
	}

	h.records = body.Records
	h.hasMore = body.HasMore
	h.fetched = true
	return nil
}

// CurrentPageRecords fetches the current page if needed and returns
// its records.
func (h *HTTP) CurrentPageRecords(ctx context.Context) ([]normalize.RawRecord, error) {
	if !h.fetched {
		if err := h.fetch(ctx); err != nil {
			return nil, err
		}
	}
	return h.records, nil
}

// HasMorePages reports the endpoint's has_more flag for the current
// page. Best-effort: a fetch failure here reads as "no more pages";
// the subsequent CurrentPageRecords surfaces the real error if the
// loop keeps going.
func (h *HTTP) HasMorePages(ctx context.Context) bool {
	if !h.fetched {
		if err := h.fetch(ctx); err != nil {
			return false
		}
	}
	return h.hasMore
}

// AdvancePage moves to the next page and eagerly fetches it, so
// advance failures are observed here rather than on the next read.
func (h *HTTP) AdvancePage(ctx context.Context) (bool, error) {
	if !h.HasMorePages(ctx) {
		return false, nil
	}
	h.page++
	h.fetched = false
	if err := h.fetch(ctx); err != nil {
		return false, err
	}
	return true, nil
}
