package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/splitnest/splitnest/pkg/logger"
	"github.com/splitnest/splitnest/pkg/redis"
)

var (
	ErrAlreadyRecorded   = errors.New("event already recorded")
	ErrLockAcquireFailed = errors.New("failed to acquire recording lock")
)

// GuardConfig tunes the Redis-side dedup guard: a short lock keeps
// two consumers off the same event, a long marker short-circuits
// replays before they reach the database.
type GuardConfig struct {
	LockTTL     time.Duration
	RecordedTTL time.Duration

	LockKeyPrefix     string
	RecordedKeyPrefix string
}

func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		LockTTL:           30 * time.Second,
		RecordedTTL:       24 * time.Hour,
		LockKeyPrefix:     "activity:lock:",
		RecordedKeyPrefix: "activity:recorded:",
	}
}

// Guard is the fast path of event dedup. The database's unique
// event_id column remains the source of truth; the guard just keeps
// replays from doing redundant work.
type Guard struct {
	redis  redis.RedisAdapter
	config GuardConfig
}

func NewGuard(adapter redis.RedisAdapter, config GuardConfig) *Guard {
	return &Guard{redis: adapter, config: config}
}

// Acquire claims the event for this consumer. ErrAlreadyRecorded
// means a previous delivery completed; ErrLockAcquireFailed means
// another consumer holds it right now.
func (g *Guard) Acquire(ctx context.Context, eventID string) error {
	recordedKey := g.config.RecordedKeyPrefix + eventID
	exists, err := g.redis.Exist(recordedKey)
	if err != nil {
		// a failed check is not fatal, the database still dedupes
		logger.Warn("failed to check recorded marker", "event_id", eventID, "error", err)
	} else if exists > 0 {
		return ErrAlreadyRecorded
	}

	lockKey := g.config.LockKeyPrefix + eventID
	lockValue := []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	acquired, err := g.redis.SetNX(lockKey, lockValue, g.config.LockTTL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return ErrLockAcquireFailed
	}
	return nil
}

// MarkRecorded sets the long-term marker and drops the lock.
func (g *Guard) MarkRecorded(ctx context.Context, eventID string) {
	recordedKey := g.config.RecordedKeyPrefix + eventID
	if err := g.redis.Set(recordedKey, []byte("1"), g.config.RecordedTTL); err != nil {
		logger.Warn("failed to set recorded marker", "event_id", eventID, "error", err)
	}
	g.release(eventID)
}

// Release frees the lock without marking, so the event can be retried.
func (g *Guard) Release(ctx context.Context, eventID string) {
	g.release(eventID)
}

func (g *Guard) release(eventID string) {
	lockKey := g.config.LockKeyPrefix + eventID
	if err := g.redis.Del(lockKey); err != nil {
		logger.Warn("failed to release recording lock", "event_id", eventID, "error", err)
	}
}
