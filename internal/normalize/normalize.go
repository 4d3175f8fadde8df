// Package normalize validates and canonicalizes raw page records into
// transactions. Bad amounts and non-tracked currencies drop the record;
// bad dates and missing identities are recovered with safe defaults.
// Normalization never aborts a run.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiptally-dev/tiptally/internal/model"
)

// RawRecord is one row as reported by a page source, all free text.
// CurrencyHint carries whatever marker the adapter saw: an icon asset
// name, or a resolved tag like "SC" when the adapter already knows.
type RawRecord struct {
	From         string `json:"from"`
	To           string `json:"to"`
	AmountText   string `json:"amount"`
	CurrencyHint string `json:"currency_hint,omitempty"`
	DateText     string `json:"date,omitempty"`
}

// DateLayout is the single expected date pattern.
const DateLayout = "2006/01/02 03:04 PM"

var (
	// ErrUnparsableAmount marks a record with no numeric run in its
	// amount field. Such records are dropped, not retried.
	ErrUnparsableAmount = errors.New("no numeric run in amount")
	// ErrFilteredCurrency marks a record whose resolved currency is not
	// the tracked unit.
	ErrFilteredCurrency = errors.New("currency not tracked")
)

var (
	amountRun = regexp.MustCompile(`[\d,]+\.?\d*`)
	unitToken = regexp.MustCompile(`(?i)[\d,]+\.?\d*\s*(gold coin|gc|sc|usd|g|\$)`)
	datePart  = regexp.MustCompile(`(\d{4}/\d{2}/\d{2})\s+(\d{2}:\d{2}\s+[AP]M)`)
)

// Normalizer converts raw records into canonical transactions.
type Normalizer struct {
	now func() time.Time
}

// New creates a Normalizer using the wall clock for date fallbacks.
func New() *Normalizer {
	return NewWithClock(time.Now)
}

// NewWithClock creates a Normalizer with an injected clock.
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Result summarizes a normalized batch. Dropped records are counted,
// never surfaced individually.
type Result struct {
	Transactions    []model.Transaction
	DroppedAmount   int // no parsable amount
	DroppedCurrency int // resolved to a non-tracked currency
	FallbackDates   int // timestamps synthesized from the clock
}

// Batch normalizes a page of raw records in order.
func (n *Normalizer) Batch(records []RawRecord) Result {
	var res Result
	for _, rec := range records {
		tx, fellBack, err := n.Record(rec)
		switch {
		case errors.Is(err, ErrUnparsableAmount):
			res.DroppedAmount++
			continue
		case errors.Is(err, ErrFilteredCurrency):
			res.DroppedCurrency++
			continue
		}
		if fellBack {
			res.FallbackDates++
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

// Record normalizes a single raw record. The boolean reports whether
// the timestamp fell back to the normalizer clock because the date
// text did not match DateLayout.
func (n *Normalizer) Record(rec RawRecord) (model.Transaction, bool, error) {
	amount, err := parseAmount(rec.AmountText)
	if err != nil {
		return model.Transaction{}, false, err
	}

	currency := resolveCurrency(rec)
	if currency != model.Tracked {
		return model.Transaction{}, false,
			fmt.Errorf("%w: %s", ErrFilteredCurrency, currency)
	}

	ts, fellBack := n.parseTimestamp(rec.DateText)

	return model.Transaction{
		From:      identityOrUnknown(rec.From),
		To:        identityOrUnknown(rec.To),
		Amount:    amount,
		Currency:  currency,
		Timestamp: ts,
	}, fellBack, nil
}

// parseAmount extracts the leading numeric run (digits, thousands
// separators, optional decimal point) from free-text amount.
func parseAmount(text string) (decimal.Decimal, error) {
	run := amountRun.FindString(text)
	if run == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnparsableAmount, text)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(run, ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnparsableAmount, text)
	}
	return d, nil
}

// resolveCurrency applies the marker first, then the unit token in the
// amount text, and defaults to the tracked unit when neither resolves.
func resolveCurrency(rec RawRecord) model.Currency {
	hint := strings.ToLower(strings.TrimSpace(rec.CurrencyHint))
	switch {
	case hint == "":
		// fall through to the amount text
	case hint == "sc" || strings.Contains(hint, "usd"):
		return model.CurrencySC
	case hint == "gc" || strings.Contains(hint, "gold"):
		return model.CurrencyGC
	}

	if m := unitToken.FindStringSubmatch(rec.AmountText); m != nil {
		switch strings.ToUpper(m[1]) {
		case "GC", "G", "GOLD COIN":
			return model.CurrencyGC
		case "SC", "$", "USD":
			return model.CurrencySC
		}
	}

	return model.Tracked
}

func (n *Normalizer) parseTimestamp(text string) (int64, bool) {
	if m := datePart.FindStringSubmatch(text); m != nil {
		parsed, err := time.ParseInLocation(DateLayout, m[1]+" "+m[2], time.Local)
		if err == nil {
			return parsed.UnixMilli(), false
		}
	}
	return n.now().UnixMilli(), true
}

func identityOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.UnknownIdentity
	}
	return s
}
