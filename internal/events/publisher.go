package events

import (
	"github.com/pkg/errors"
	"github.com/splitnest/splitnest/pkg/logger"
	"github.com/splitnest/splitnest/pkg/redis"
)

// Publisher appends events to the activity stream.
type Publisher struct {
	adapter redis.RedisAdapter
	stream  string
	maxLen  int64
}

func NewPublisher(adapter redis.RedisAdapter, stream string, maxLen int64) *Publisher {
	return &Publisher{
		adapter: adapter,
		stream:  stream,
		maxLen:  maxLen,
	}
}

// Publish appends one event. Callers invoke this after their
// transaction commits; a publish failure is logged and surfaced but
// must never roll back domain state.
func (p *Publisher) Publish(e *Event) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}

	values := map[string]interface{}{
		"event":    string(data),
		"event_id": e.ID,
	}
	if _, err := p.adapter.XAdd(p.stream, values); err != nil {
		return errors.Wrap(err, "failed to append event to stream")
	}

	if p.maxLen > 0 {
		if err := p.adapter.XTrimApprox(p.stream, p.maxLen); err != nil {
			logger.Warn("failed to trim activity stream", "stream", p.stream, "error", err)
		}
	}
	return nil
}
