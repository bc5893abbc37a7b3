package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/domain"
)

// eventsChannel is the Redis pub/sub channel carrying change-feed
// events between API instances.
const eventsChannel = "tradelink:events"

// Broker implements domain.EventPublisher. With a Redis client it
// publishes events to a shared pub/sub channel so every instance's hub
// sees every event; without one it dispatches straight to the local
// hub, which is enough for a single instance and for tests.
type Broker struct {
	hub    *Hub
	rdb    *redis.Client
	logger *zap.Logger
}

func NewBroker(hub *Hub, rdb *redis.Client, logger *zap.Logger) *Broker {
	return &Broker{hub: hub, rdb: rdb, logger: logger}
}

// Run consumes the shared channel and feeds the local hub. Blocks
// until ctx is done; no-op without Redis.
func (b *Broker) Run(ctx context.Context) {
	if b.rdb == nil {
		<-ctx.Done()
		return
	}

	pubsub := b.rdb.Subscribe(ctx, eventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Error("malformed change-feed payload", zap.Error(err))
				continue
			}
			b.hub.Dispatch(event)
		}
	}
}

// ConnectionChanged publishes a connection create/resolve event.
func (b *Broker) ConnectionChanged(ctx context.Context, conn *domain.Connection) {
	b.publish(ctx, connectionEvent(conn))
}

// MessageCreated publishes a message insert event.
func (b *Broker) MessageCreated(ctx context.Context, conv *domain.Conversation, msg *domain.Message) {
	b.publish(ctx, messageEvent(conv, msg))
}

func (b *Broker) publish(ctx context.Context, event Event) {
	if b.rdb == nil {
		b.hub.Dispatch(event)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to marshal change-feed event", zap.Error(err))
		return
	}
	// Best effort: a failed publish loses the push, not the write; the
	// next fetch resynchronizes the view.
	if err := b.rdb.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		b.logger.Error("failed to publish change-feed event", zap.Error(err))
	}
}
