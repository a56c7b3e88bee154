package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
)

// MinimizeDebts turns a group's balances into the smallest workable
// set of repayments using a two-cursor greedy pass: the largest
// debtor pays the largest creditor the maximum amount either side can
// absorb, and a cursor advances only when its side reaches exactly
// zero. With D debtors and C creditors the result has at most
// D + C - 1 edges.
//
// Ordering is deterministic: debtors by debt magnitude descending,
// creditors by net balance descending, ties broken by ascending user
// id. Sorting happens here rather than in SQL so the comparison is
// always numeric.
func MinimizeDebts(groupID int64, balances []*model.Balance) []*model.DebtEdge {
	var debtors, creditors []*model.Balance
	for _, b := range balances {
		switch {
		case b.NetBalance.IsNegative():
			debtors = append(debtors, b)
		case b.NetBalance.IsPositive():
			creditors = append(creditors, b)
		}
	}
	if len(debtors) == 0 || len(creditors) == 0 {
		return nil
	}

	sort.Slice(debtors, func(i, j int) bool {
		// most negative first
		if c := debtors[i].NetBalance.Cmp(debtors[j].NetBalance); c != 0 {
			return c < 0
		}
		return debtors[i].UserID < debtors[j].UserID
	})
	sort.Slice(creditors, func(i, j int) bool {
		if c := creditors[i].NetBalance.Cmp(creditors[j].NetBalance); c != 0 {
			return c > 0
		}
		return creditors[i].UserID < creditors[j].UserID
	})

	edges := make([]*model.DebtEdge, 0, len(debtors)+len(creditors)-1)

	di, ci := 0, 0
	debt := debtors[di].NetBalance.Neg()
	credit := creditors[ci].NetBalance

	for di < len(debtors) && ci < len(creditors) {
		transfer := decimal.Min(debt, credit)
		if transfer.IsPositive() {
			edges = append(edges, &model.DebtEdge{
				GroupID:    groupID,
				DebtorID:   debtors[di].UserID,
				CreditorID: creditors[ci].UserID,
				Amount:     transfer,
			})
		}

		debt = debt.Sub(transfer)
		credit = credit.Sub(transfer)

		if debt.IsZero() {
			di++
			if di < len(debtors) {
				debt = debtors[di].NetBalance.Neg()
			}
		}
		if credit.IsZero() {
			ci++
			if ci < len(creditors) {
				credit = creditors[ci].NetBalance
			}
		}
	}
	return edges
}
