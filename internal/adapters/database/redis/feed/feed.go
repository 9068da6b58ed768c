package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/campusevents/backend/internal/domain/dto"
	"github.com/campusevents/backend/pkg/logger/types"
	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "blasts:insert"

// Feed publishes inserted blasts on a redis pub/sub channel and lets
// clients subscribe to the ones on events they care about.
type Feed struct {
	client  *redis.Client
	channel string
	logger  *types.Logger
}

func New(client *redis.Client, channel string, logger *types.Logger) *Feed {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Feed{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Publish announces an inserted blast to every subscriber.
func (f *Feed) Publish(ctx context.Context, blast dto.BlastInserted) error {
	payload, err := json.Marshal(blast)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, payload).Err()
}

// Subscribe starts delivering blasts whose event is in eventIDs. The
// subscription lives until Close is called or ctx is done.
func (f *Feed) Subscribe(ctx context.Context, eventIDs []string) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", f.channel, err)
	}

	sub := newSubscription(eventIDs, func() error { return pubsub.Close() })
	go sub.run(ctx, pubsub.Channel(), f.logger)
	return sub, nil
}

// Subscription is a live, filtered view of the feed.
type Subscription struct {
	allowed map[string]struct{}
	events  chan dto.BlastInserted
	done    chan struct{}
	once    sync.Once
	closeFn func() error
	err     error
}

func newSubscription(eventIDs []string, closeFn func() error) *Subscription {
	allowed := make(map[string]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		allowed[id] = struct{}{}
	}
	return &Subscription{
		allowed: allowed,
		events:  make(chan dto.BlastInserted, 16),
		done:    make(chan struct{}),
		closeFn: closeFn,
	}
}

// Events delivers matching blasts in feed order. It is closed after Close.
func (s *Subscription) Events() <-chan dto.BlastInserted {
	return s.events
}

// Close tears the subscription down. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.closeFn != nil {
			s.err = s.closeFn()
		}
	})
	return s.err
}

func (s *Subscription) run(ctx context.Context, messages <-chan *redis.Message, logger *types.Logger) {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			_ = s.Close()
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			blast, match, err := s.decode(msg.Payload)
			if err != nil {
				logger.Warnf("skipping malformed feed message: %v", err)
				continue
			}
			if !match {
				continue
			}
			select {
			case s.events <- blast:
			case <-s.done:
				return
			case <-ctx.Done():
				_ = s.Close()
				return
			}
		}
	}
}

// decode parses a feed payload and reports whether it belongs to one of the
// subscribed events.
func (s *Subscription) decode(payload string) (dto.BlastInserted, bool, error) {
	var blast dto.BlastInserted
	if err := json.Unmarshal([]byte(payload), &blast); err != nil {
		return dto.BlastInserted{}, false, err
	}
	_, ok := s.allowed[blast.EventID]
	return blast, ok, nil
}
