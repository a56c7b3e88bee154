package model

import "time"

// ActivityType tags an entry in a group's activity feed.
type ActivityType string

const (
	ActivityExpenseAdded        ActivityType = "expense_added"
	ActivityExpenseUpdated      ActivityType = "expense_updated"
	ActivityExpenseDeleted      ActivityType = "expense_deleted"
	ActivitySettlementCreated   ActivityType = "settlement_created"
	ActivitySettlementConfirmed ActivityType = "settlement_confirmed"
	ActivitySettlementRejected  ActivityType = "settlement_rejected"
	ActivityRequestSent         ActivityType = "settlement_request_sent"
	ActivityRequestAccepted     ActivityType = "settlement_request_accepted"
	ActivityRequestRejected     ActivityType = "settlement_request_rejected"
	ActivityRequestExpired      ActivityType = "settlement_request_expired"
)

// Activity is one entry in a group's feed. EventID is the idempotency
// key carried from the originating event, so replayed deliveries never
// produce duplicate rows.
type Activity struct {
	ID          int64        `json:"id"`
	EventID     string       `json:"event_id"`
	GroupID     int64        `json:"group_id"`
	UserID      int64        `json:"user_id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Metadata    string       `json:"metadata,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ActivityFilter controls feed listings.
type ActivityFilter struct {
	GroupID *int64
	UserID  *int64
	Types   []ActivityType
	Limit   int
	Offset  int
}
