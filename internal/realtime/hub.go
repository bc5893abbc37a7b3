package realtime

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/domain"
)

// subscriptionBuffer is the per-subscription channel capacity. A
// subscriber that falls this far behind starts losing events; the
// initial-fetch-plus-merge protocol recovers the gap on the next open.
const subscriptionBuffer = 64

// UserSink receives events addressed to a user's open sessions. The
// websocket manager registers itself as a sink.
type UserSink interface {
	SendToUser(userID uuid.UUID, event Event)
}

// Hub dispatches change-feed events to in-process subscribers:
// per-conversation message streams and per-user sinks.
type Hub struct {
	mu            sync.RWMutex
	conversations map[uuid.UUID]map[*messageSubscription]struct{}
	sinks         []UserSink
	logger        *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conversations: make(map[uuid.UUID]map[*messageSubscription]struct{}),
		logger:        logger,
	}
}

// AddSink registers a per-user delivery target.
func (h *Hub) AddSink(sink UserSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, sink)
}

// SubscribeMessages opens a live feed for one conversation. The
// returned handle must be closed when the viewer navigates away;
// otherwise the subscription leaks deliveries to a stale view.
func (h *Hub) SubscribeMessages(conversationID uuid.UUID) domain.MessageStream {
	sub := &messageSubscription{
		hub:            h,
		conversationID: conversationID,
		ch:             make(chan *domain.Message, subscriptionBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.conversations[conversationID]
	if !ok {
		subs = make(map[*messageSubscription]struct{})
		h.conversations[conversationID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Dispatch delivers an event to every matching subscriber. Delivery
// order matches dispatch order; a full subscriber drops the event
// rather than blocking the dispatcher.
func (h *Hub) Dispatch(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if event.Type == EventMessageCreated && event.Message != nil {
		for sub := range h.conversations[event.Message.ConversationID] {
			select {
			case sub.ch <- event.Message:
			default:
				h.logger.Warn("dropping message for slow subscriber",
					zap.String("conversation_id", event.Message.ConversationID.String()))
			}
		}
	}

	for _, sink := range h.sinks {
		for _, userID := range event.Recipients {
			sink.SendToUser(userID, event)
		}
	}
}

func (h *Hub) unsubscribe(sub *messageSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.conversations[sub.conversationID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.conversations, sub.conversationID)
		}
	}
	close(sub.ch)
}

// messageSubscription implements domain.MessageStream.
type messageSubscription struct {
	hub            *Hub
	conversationID uuid.UUID
	ch             chan *domain.Message
	closeOnce      sync.Once
}

func (s *messageSubscription) Messages() <-chan *domain.Message {
	return s.ch
}

// Close releases the subscription. Idempotent.
func (s *messageSubscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.unsubscribe(s)
	})
}
