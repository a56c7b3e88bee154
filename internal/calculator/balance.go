// Package calculator holds the pure balance arithmetic: aggregating
// expenses into per-user balances and minimizing the resulting debt
// graph. Nothing here touches storage or a clock.
package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
)

// AggregateBalances folds a group's expense ledger into one balance
// per member. Every member gets a row even with zero activity, and
// such rows come out settled. The result is ordered by user id
// ascending and the net balances always sum to exactly zero.
func AggregateBalances(groupID int64, memberIDs []int64, expenses []*model.Expense) []*model.Balance {
	paid := make(map[int64]decimal.Decimal, len(memberIDs))
	owed := make(map[int64]decimal.Decimal, len(memberIDs))
	for _, id := range memberIDs {
		paid[id] = decimal.Zero
		owed[id] = decimal.Zero
	}

	for _, e := range expenses {
		if p, ok := paid[e.PaidByID]; ok {
			paid[e.PaidByID] = p.Add(e.Amount)
		}
		for _, s := range e.Shares {
			if o, ok := owed[s.UserID]; ok {
				owed[s.UserID] = o.Add(s.Amount)
			}
		}
	}

	ids := make([]int64, len(memberIDs))
	copy(ids, memberIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	balances := make([]*model.Balance, 0, len(ids))
	for _, id := range ids {
		net := paid[id].Sub(owed[id])
		balances = append(balances, &model.Balance{
			GroupID:    groupID,
			UserID:     id,
			TotalPaid:  paid[id],
			TotalOwed:  owed[id],
			NetBalance: net,
			IsSettled:  net.IsZero(),
		})
	}
	return balances
}

// TotalExpenses sums the amounts of the given expenses.
func TotalExpenses(expenses []*model.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
