package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementRequestStatus is the lifecycle state of a settlement
// request. accepted, rejected and expired are terminal.
type SettlementRequestStatus string

const (
	RequestStatusPending  SettlementRequestStatus = "pending"
	RequestStatusAccepted SettlementRequestStatus = "accepted"
	RequestStatusRejected SettlementRequestStatus = "rejected"
	RequestStatusExpired  SettlementRequestStatus = "expired"
)

// RequestExpiryTTL is how long a settlement request stays actionable
// after creation.
const RequestExpiryTTL = 7 * 24 * time.Hour

// SettlementRequest is a debtor offering to settle up with a
// creditor. Accepting one creates a pending Settlement paid by the
// requester.
type SettlementRequest struct {
	ID              int64                   `json:"id"`
	ReferenceCode   string                  `json:"reference_code"`
	GroupID         int64                   `json:"group_id"`
	RequesterID     int64                   `json:"requester_id"` // the debtor, offers to pay
	RequesteeID     int64                   `json:"requestee_id"` // the creditor, responds
	Amount          decimal.Decimal         `json:"amount"`
	Note            string                  `json:"note,omitempty"`
	Status          SettlementRequestStatus `json:"status"`
	ResponseMessage string                  `json:"response_message,omitempty"`
	SettlementID    *int64                  `json:"settlement_id,omitempty"`
	ExpiresAt       time.Time               `json:"expires_at"`
	CreatedAt       time.Time               `json:"created_at"`
	ResolvedAt      *time.Time              `json:"resolved_at,omitempty"`
}

// IsExpired reports whether the request's validity window has passed
// at the given instant. It flips only strictly after ExpiresAt, and a
// request already in a terminal state is never considered expired.
func (r *SettlementRequest) IsExpired(now time.Time) bool {
	return r.Status == RequestStatusPending && now.After(r.ExpiresAt)
}

func (r *SettlementRequest) IsTerminal() bool {
	return r.Status != RequestStatusPending
}

type SettlementRequestCreateRequest struct {
	GroupID     int64           `json:"group_id"`
	RequesterID int64           `json:"requester_id"`
	RequesteeID int64           `json:"requestee_id"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note"`
}

func (p SettlementRequestCreateRequest) Validate() error {
	if p.GroupID == 0 {
		return NewValidationError("group_id is required")
	}
	if p.RequesterID == 0 {
		return NewValidationError("requester_id is required")
	}
	if p.RequesteeID == 0 {
		return NewValidationError("requestee_id is required")
	}
	if p.RequesterID == p.RequesteeID {
		return NewValidationError("requester and requestee must be different users")
	}
	if !p.Amount.IsPositive() {
		return NewValidationError("amount must be greater than zero")
	}
	return nil
}

// SettlementRequestFilter controls request listings.
type SettlementRequestFilter struct {
	GroupID     *int64
	RequesterID *int64
	RequesteeID *int64
	Statuses    []SettlementRequestStatus
	Limit       int
	Offset      int
	Desc        bool
}
