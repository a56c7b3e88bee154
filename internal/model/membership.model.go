package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CreatedByID int64     `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Membership ties a user to a group. Balances, debt edges and
// settlements may only involve members of the group.
type Membership struct {
	ID       int64     `json:"id"`
	GroupID  int64     `json:"group_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// DeletableCheck is the answer to "may this group be deleted": the
// group must carry no unsettled debt and no pending settlements.
type DeletableCheck struct {
	GroupID   int64    `json:"group_id"`
	Deletable bool     `json:"deletable"`
	BlockedBy []string `json:"blocked_by,omitempty"`
}

// RemovableCheck is the answer to "may this member leave the group":
// the member must carry no unsettled debt and no pending settlements
// in which they are involved.
type RemovableCheck struct {
	GroupID   int64    `json:"group_id"`
	UserID    int64    `json:"user_id"`
	Removable bool     `json:"removable"`
	BlockedBy []string `json:"blocked_by,omitempty"`
}
