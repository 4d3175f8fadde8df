package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency tags the unit of a tip transfer.
type Currency string

const (
	// CurrencySC is Sweepstakes Cash, the single tracked unit.
	CurrencySC Currency = "SC"
	// CurrencyGC is Gold Coins; GC records are filtered at normalization.
	CurrencyGC Currency = "GC"
)

// Tracked is the only currency that enters the transaction log.
const Tracked = CurrencySC

// UnknownIdentity is substituted for a missing from/to value.
const UnknownIdentity = "Unknown"

// Transaction is a single tip transfer as reported by the page source.
// Immutable once created; only the normalizer constructs them.
type Transaction struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  Currency        `json:"currency"`
	Timestamp int64           `json:"timestamp"` // milliseconds since epoch
}

// IdentityKey returns the composite duplicate-detection key.
// Endpoints are folded to canonical form so dedup follows the same
// case-insensitive comparison rule as identity sets. Not a
// cryptographic identifier: it assumes the source never reports two
// distinct transfers with identical (from, to, amount, timestamp).
func (t Transaction) IdentityKey() string {
	return fmt.Sprintf("%s|%s|%s|%d",
		CanonicalIdentity(t.From),
		CanonicalIdentity(t.To),
		t.Amount.String(),
		t.Timestamp)
}

// CanonicalIdentity returns the comparison form of an identity string:
// whitespace-trimmed and lower-cased. Display form is preserved
// everywhere else; this form is only for membership and key comparison.
func CanonicalIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
