package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the aggregated expense position of one user inside one
// group. There is at most one row per (group, user) pair.
//
// NetBalance = TotalPaid - TotalOwed. Positive means the group owes
// the user, negative means the user owes the group.
type Balance struct {
	ID         int64           `json:"id"`
	GroupID    int64           `json:"group_id"`
	UserID     int64           `json:"user_id"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	NetBalance decimal.Decimal `json:"net_balance"`
	IsSettled  bool            `json:"is_settled"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsCreditor reports whether the group owes this user money.
func (b *Balance) IsCreditor() bool {
	return b.NetBalance.IsPositive()
}

// IsDebtor reports whether this user owes the group money.
func (b *Balance) IsDebtor() bool {
	return b.NetBalance.IsNegative()
}

// GroupBalanceSummary is the computed group-level view returned by
// the balance read API. It is never stored.
type GroupBalanceSummary struct {
	GroupID            int64           `json:"group_id"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	MemberCount        int             `json:"member_count"`
	SettledCount       int             `json:"settled_count"`
	UnsettledCount     int             `json:"unsettled_count"`
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	TransactionsNeeded int             `json:"transactions_needed"`
	Balances           []*Balance      `json:"balances"`
	DebtEdges          []*DebtEdge     `json:"debt_edges"`
	IsFullySettled     bool            `json:"is_fully_settled"`
}

// NewGroupBalanceSummary derives the group-level stats from the
// per-member balances and the minimized edge set. TotalOutstanding is
// the sum of positive net balances, which by the zero-sum invariant
// equals the total debt still owed.
func NewGroupBalanceSummary(groupID int64, totalExpenses decimal.Decimal, balances []*Balance, edges []*DebtEdge) *GroupBalanceSummary {
	s := &GroupBalanceSummary{
		GroupID:            groupID,
		TotalExpenses:      totalExpenses,
		MemberCount:        len(balances),
		TotalOutstanding:   decimal.Zero,
		TransactionsNeeded: len(edges),
		Balances:           balances,
		DebtEdges:          edges,
		IsFullySettled:     true,
	}
	for _, b := range balances {
		if b.IsSettled {
			s.SettledCount++
			continue
		}
		s.UnsettledCount++
		s.IsFullySettled = false
		if b.IsCreditor() {
			s.TotalOutstanding = s.TotalOutstanding.Add(b.NetBalance)
		}
	}
	return s
}
