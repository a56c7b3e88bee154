package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType describes how an expense amount is divided among its
// participants.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitUnequal    SplitType = "unequal"
	SplitPercentage SplitType = "percentage"
)

type Expense struct {
	ID          int64             `json:"id"`
	GroupID     int64             `json:"group_id"`
	PaidByID    int64             `json:"paid_by_id"`
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	SplitType   SplitType         `json:"split_type"`
	Shares      []*ExpenseShare   `json:"shares"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ExpenseShare is the portion of an expense owed by one participant.
// For percentage splits Percentage holds the declared percentage and
// Amount holds the resolved monetary share.
type ExpenseShare struct {
	UserID     int64           `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage,omitempty"`
}

// SplitInput is one participant's declared portion in a create or
// update request. Amount is required for unequal splits, Percentage
// for percentage splits, and both are ignored for equal splits.
type SplitInput struct {
	UserID     int64           `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

type ExpenseCreateRequest struct {
	GroupID     int64           `json:"group_id"`
	PaidByID    int64           `json:"paid_by_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	SplitType   SplitType       `json:"split_type"`
	Splits      []SplitInput    `json:"splits"`
}

var oneHundred = decimal.NewFromInt(100)

func (p ExpenseCreateRequest) Validate() error {
	if p.GroupID == 0 {
		return NewValidationError("group_id is required")
	}
	if p.PaidByID == 0 {
		return NewValidationError("paid_by_id is required")
	}
	if p.Description == "" {
		return NewValidationError("description is required")
	}
	if !p.Amount.IsPositive() {
		return NewValidationError("amount must be greater than zero")
	}
	if len(p.Splits) == 0 {
		return NewValidationError("at least one participant is required")
	}

	seen := make(map[int64]struct{}, len(p.Splits))
	for _, s := range p.Splits {
		if s.UserID == 0 {
			return NewValidationError("participant user_id is required")
		}
		if _, dup := seen[s.UserID]; dup {
			return NewValidationError("duplicate participant in split")
		}
		seen[s.UserID] = struct{}{}
	}

	switch p.SplitType {
	case SplitEqual:
		// shares are derived, declared amounts are ignored
	case SplitUnequal:
		sum := decimal.Zero
		for _, s := range p.Splits {
			if s.Amount.IsNegative() {
				return NewValidationError("split amounts must not be negative")
			}
			sum = sum.Add(s.Amount)
		}
		if !sum.Equal(p.Amount) {
			return NewValidationError("split amounts must sum to the expense amount")
		}
	case SplitPercentage:
		sum := decimal.Zero
		for _, s := range p.Splits {
			if s.Percentage.IsNegative() {
				return NewValidationError("split percentages must not be negative")
			}
			sum = sum.Add(s.Percentage)
		}
		if !sum.Equal(oneHundred) {
			return NewValidationError("split percentages must sum to 100")
		}
	default:
		return NewValidationError("split_type must be equal, unequal or percentage")
	}
	return nil
}

// ResolveShares turns the declared splits into concrete monetary
// shares that sum exactly to the expense amount. For equal and
// percentage splits any rounding remainder is assigned to the
// participant with the lowest user id so the total never drifts.
func (p ExpenseCreateRequest) ResolveShares() []*ExpenseShare {
	shares := make([]*ExpenseShare, len(p.Splits))

	switch p.SplitType {
	case SplitUnequal:
		for i, s := range p.Splits {
			shares[i] = &ExpenseShare{UserID: s.UserID, Amount: s.Amount}
		}
		return shares

	case SplitPercentage:
		for i, s := range p.Splits {
			amt := p.Amount.Mul(s.Percentage).Div(oneHundred).RoundBank(2)
			shares[i] = &ExpenseShare{UserID: s.UserID, Amount: amt, Percentage: s.Percentage}
		}

	default: // SplitEqual
		n := int64(len(p.Splits))
		base := p.Amount.Div(decimal.NewFromInt(n)).RoundDown(2)
		for i, s := range p.Splits {
			shares[i] = &ExpenseShare{UserID: s.UserID, Amount: base}
		}
	}

	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	if diff := p.Amount.Sub(total); !diff.IsZero() {
		lowest := shares[0]
		for _, s := range shares[1:] {
			if s.UserID < lowest.UserID {
				lowest = s
			}
		}
		lowest.Amount = lowest.Amount.Add(diff)
	}
	return shares
}

type ExpenseUpdateRequest struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	SplitType   *SplitType       `json:"split_type"`
	Splits      []SplitInput     `json:"splits"`
}

// ExpenseFilter controls expense listings.
type ExpenseFilter struct {
	GroupID  *int64
	PaidByID *int64
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
	Desc     bool
}
