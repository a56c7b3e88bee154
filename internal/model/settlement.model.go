package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the lifecycle state of a settlement.
// pending is the only non-terminal state.
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "pending"
	SettlementStatusConfirmed SettlementStatus = "confirmed"
	SettlementStatusRejected  SettlementStatus = "rejected"
)

// SettlementMethod is how the money actually moved.
type SettlementMethod string

const (
	SettlementMethodCash         SettlementMethod = "cash"
	SettlementMethodBankTransfer SettlementMethod = "bank_transfer"
	SettlementMethodOnline       SettlementMethod = "online"
	SettlementMethodOther        SettlementMethod = "other"
)

// Settlement records a payment made by Payer to Receiver to settle
// debt inside a group. It is created pending and becomes confirmed or
// rejected exactly once; both are terminal.
type Settlement struct {
	ID            int64            `json:"id"`
	ReferenceCode string           `json:"reference_code"`
	GroupID       int64            `json:"group_id"`
	PayerID       int64            `json:"payer_id"`
	ReceiverID    int64            `json:"receiver_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Method        SettlementMethod `json:"method"`
	Note          string           `json:"note,omitempty"`
	Status        SettlementStatus `json:"status"`
	InitiatedByID int64            `json:"initiated_by_id"`
	ConfirmedByID *int64           `json:"confirmed_by_id,omitempty"` // the resolver, confirm or reject
	CreatedAt     time.Time        `json:"created_at"`
	ResolvedAt    *time.Time       `json:"resolved_at,omitempty"`
}

// IsTerminal reports whether the settlement can no longer change state.
func (s *Settlement) IsTerminal() bool {
	return s.Status != SettlementStatusPending
}

type SettlementCreateRequest struct {
	GroupID       int64            `json:"group_id"`
	PayerID       int64            `json:"payer_id"`
	ReceiverID    int64            `json:"receiver_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Method        SettlementMethod `json:"method"`
	Note          string           `json:"note"`
	InitiatedByID int64            `json:"initiated_by_id"` // defaults to the payer
}

func (p SettlementCreateRequest) Validate() error {
	if p.GroupID == 0 {
		return NewValidationError("group_id is required")
	}
	if p.PayerID == 0 {
		return NewValidationError("payer_id is required")
	}
	if p.ReceiverID == 0 {
		return NewValidationError("receiver_id is required")
	}
	if p.PayerID == p.ReceiverID {
		return NewValidationError("payer and receiver must be different users")
	}
	if !p.Amount.IsPositive() {
		return NewValidationError("amount must be greater than zero")
	}
	switch p.Method {
	case SettlementMethodCash, SettlementMethodBankTransfer, SettlementMethodOnline, SettlementMethodOther, "":
	default:
		return NewValidationError("unknown settlement method")
	}
	return nil
}

// SettlementFilter controls settlement listings.
type SettlementFilter struct {
	GroupID    *int64
	PayerID    *int64
	ReceiverID *int64
	Statuses   []SettlementStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
	Desc       bool
}

// UserSettlementStatus is the per-user view of where a member stands
// inside a group: what they still owe, what they are owed, and any
// pending settlements they are involved in.
type UserSettlementStatus struct {
	GroupID          int64           `json:"group_id"`
	UserID           int64           `json:"user_id"`
	TotalOwed        decimal.Decimal `json:"total_owed"`         // user -> others
	TotalOwedToUser  decimal.Decimal `json:"total_owed_to_user"` // others -> user
	OwesTo           []*DebtEdge     `json:"owes_to"`
	OwedBy           []*DebtEdge     `json:"owed_by"`
	PendingOutgoing  int64           `json:"pending_outgoing"`
	PendingIncoming  int64           `json:"pending_incoming"`
	IsFullySettled   bool            `json:"is_fully_settled"`
	CanLeaveGroup    bool            `json:"can_leave_group"`
}
