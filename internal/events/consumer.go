package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/splitnest/splitnest/pkg/logger"
	"github.com/splitnest/splitnest/pkg/redis"
)

// Handler processes one delivered event. A nil return acknowledges
// the entry; an error leaves it pending for reclaim and retry.
type Handler func(ctx context.Context, e *Event) error

type ConsumerConfig struct {
	Stream            string
	Group             string
	Consumer          string
	BatchSize         int64
	PollInterval      time.Duration
	VisibilityTimeout time.Duration
}

// Consumer reads the activity stream through a consumer group and
// dispatches entries to a handler. Entries left pending longer than
// the visibility timeout are claimed back and retried.
type Consumer struct {
	adapter redis.RedisAdapter
	config  ConsumerConfig
	handler Handler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(adapter redis.RedisAdapter, config ConsumerConfig) (*Consumer, error) {
	if config.Stream == "" {
		return nil, fmt.Errorf("stream name is required")
	}
	if config.Group == "" {
		config.Group = "default-group"
	}
	if config.Consumer == "" {
		config.Consumer = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.PollInterval == 0 {
		config.PollInterval = time.Second
	}
	if config.VisibilityTimeout == 0 {
		config.VisibilityTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Consumer{
		adapter: adapter,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}

	// the group may already exist, which is fine
	_ = adapter.XGroupCreateMkStream(config.Stream, config.Group, "0")

	return c, nil
}

func (c *Consumer) Consume(handler Handler) error {
	if handler == nil {
		return fmt.Errorf("event handler is required")
	}
	c.handler = handler
	c.wg.Add(1)
	go c.loop()
	return nil
}

func (c *Consumer) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.drain()
			c.reclaim()
		}
	}
}

func (c *Consumer) drain() {
	messages, err := c.adapter.XReadGroup(
		c.config.Group,
		c.config.Consumer,
		c.config.Stream,
		">",
		c.config.BatchSize,
	)
	if err != nil {
		if err != redis.NilError {
			logger.Error("failed to read activity stream", "stream", c.config.Stream, "error", err)
		}
		return
	}

	for _, msg := range messages {
		c.dispatch(msg)
	}
}

// reclaim takes over entries another consumer read but never acked.
func (c *Consumer) reclaim() {
	pending, err := c.adapter.XPendingExt(c.config.Stream, c.config.Group, "-", "+", 100)
	if err != nil || len(pending) == 0 {
		return
	}

	var stuck []string
	for _, p := range pending {
		if p.Idle >= c.config.VisibilityTimeout {
			stuck = append(stuck, p.ID)
		}
	}
	if len(stuck) == 0 {
		return
	}

	messages, err := c.adapter.XClaim(
		c.config.Stream,
		c.config.Group,
		c.config.Consumer,
		c.config.VisibilityTimeout,
		stuck...,
	)
	if err != nil {
		return
	}
	for _, msg := range messages {
		c.dispatch(msg)
	}
}

func (c *Consumer) dispatch(msg redis.StreamMessage) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		// malformed entry, drop it so it never blocks the group
		_ = c.adapter.XAck(c.config.Stream, c.config.Group, msg.ID)
		logger.Warn("dropping malformed stream entry", "stream", c.config.Stream, "id", msg.ID)
		return
	}

	e, err := Decode([]byte(raw))
	if err != nil {
		_ = c.adapter.XAck(c.config.Stream, c.config.Group, msg.ID)
		logger.Warn("dropping undecodable event", "stream", c.config.Stream, "id", msg.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.config.VisibilityTimeout)
	defer cancel()

	if err := c.handler(ctx, e); err != nil {
		logger.Error("event handler failed, entry stays pending", "event_id", e.ID, "error", err)
		return
	}
	_ = c.adapter.XAck(c.config.Stream, c.config.Group, msg.ID)
}

// Stop cancels the loop and waits for in-flight handlers to finish.
func (c *Consumer) Stop(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for consumer to stop")
	}
}
