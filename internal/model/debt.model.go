package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtEdge is one suggested repayment produced by the debt
// minimization pass: Debtor pays Creditor exactly Amount.
//
// Edges are a derived set. Every recalculation of a group's balances
// discards the group's previous edges and writes a fresh set, so an
// edge ID is not stable across recalculations.
type DebtEdge struct {
	ID         int64           `json:"id"`
	GroupID    int64           `json:"group_id"`
	DebtorID   int64           `json:"debtor_id"`
	CreditorID int64           `json:"creditor_id"`
	Amount     decimal.Decimal `json:"amount"`
	IsSettled  bool            `json:"is_settled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DebtFilter controls debt edge listings.
type DebtFilter struct {
	GroupID    *int64
	DebtorID   *int64
	CreditorID *int64
	Unsettled  bool // only edges not yet settled
}
