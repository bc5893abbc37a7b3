package realtime

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradelink/backend/internal/domain"
)

// MergeFeed combines an initial backlog fetch with a live stream into
// one ordered feed. The backlog is emitted first, then live inserts;
// rows present in both (the subscription was opened before the fetch
// completed) are emitted once, deduplicated by message ID.
//
// The returned channel closes when the stream closes or ctx is done.
// MergeFeed takes ownership of the stream and closes it on exit.
func MergeFeed(ctx context.Context, backlog []*domain.Message, stream domain.MessageStream) <-chan *domain.Message {
	out := make(chan *domain.Message, subscriptionBuffer)

	go func() {
		defer close(out)
		defer stream.Close()

		seen := make(map[uuid.UUID]struct{}, len(backlog))
		for _, msg := range backlog {
			seen[msg.ID] = struct{}{}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-stream.Messages():
				if !ok {
					return
				}
				if _, dup := seen[msg.ID]; dup {
					continue
				}
				seen[msg.ID] = struct{}{}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
