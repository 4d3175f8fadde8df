package model

import "github.com/shopspring/decimal"

// LedgerEntry summarizes one counterparty relative to the self
// identities. Entries are recomputed from the full log on every
// aggregation pass and hold no independent lifecycle.
type LedgerEntry struct {
	Sent         decimal.Decimal `json:"sent"`
	Received     decimal.Decimal `json:"received"`
	LastActivity int64           `json:"last_activity"` // ms epoch, 0 = never
}

// Delta is the counterparty's net balance: received minus sent.
// Positive means they are in credit relative to the operator.
func (e LedgerEntry) Delta() decimal.Decimal {
	return e.Received.Sub(e.Sent)
}
