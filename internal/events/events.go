// Package events carries group activity over a Redis stream from the
// mutation path to the activity recorder. Publishing happens after the
// owning transaction commits; consumers deduplicate on the event id,
// so delivery is at-least-once end to end.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/splitnest/splitnest/internal/model"
)

// Event is one group-scoped activity notification.
type Event struct {
	ID          string             `json:"id"`
	GroupID     int64              `json:"group_id"`
	UserID      int64              `json:"user_id"`
	Type        model.ActivityType `json:"type"`
	Description string             `json:"description"`
	Metadata    map[string]string  `json:"metadata,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(groupID, userID int64, typ model.ActivityType, description string, metadata map[string]string) *Event {
	return &Event{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		UserID:      userID,
		Type:        typ,
		Description: description,
		Metadata:    metadata,
		OccurredAt:  time.Now().UTC(),
	}
}

func (e *Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode event")
	}
	return data, nil
}

func Decode(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrap(err, "failed to decode event")
	}
	if e.ID == "" {
		return nil, errors.New("event is missing an id")
	}
	return &e, nil
}
