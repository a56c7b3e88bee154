package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupSettlementSummary is the stored rollup of confirmed settlement
// activity per group. It is recomputed on every settlement mutation,
// so reads never aggregate the settlements table.
type GroupSettlementSummary struct {
	ID               int64           `json:"id"`
	GroupID          int64           `json:"group_id"`
	TotalSettled     decimal.Decimal `json:"total_settled"`
	SettlementCount  int64           `json:"settlement_count"`
	PendingCount     int64           `json:"pending_count"`
	IsFullySettled   bool            `json:"is_fully_settled"`
	LastSettlementAt *time.Time      `json:"last_settlement_at,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
