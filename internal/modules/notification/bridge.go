package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"veriflow/internal/domain"
)

const bridgeChannel = "veriflow:events"

// Bridge relays events between instances through redis pub/sub so a user
// connected to one replica still sees events raised on another. Each
// instance tags outgoing envelopes with its own ID and skips them on the
// way back in.
type Bridge struct {
	client     *redis.Client
	instanceID string
	log        *zap.Logger
}

type envelope struct {
	Origin string       `json:"origin"`
	Event  domain.Event `json:"event"`
}

func NewBridge(client *redis.Client, log *zap.Logger) *Bridge {
	return &Bridge{
		client:     client,
		instanceID: uuid.New().String(),
		log:        log,
	}
}

func (b *Bridge) Publish(ctx context.Context, ev domain.Event) error {
	raw, err := json.Marshal(envelope{Origin: b.instanceID, Event: ev})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.client.Publish(ctx, bridgeChannel, raw).Err()
}

// Subscribe blocks until ctx is cancelled, handing events from other
// instances to handle. Malformed payloads are logged and skipped.
func (b *Bridge) Subscribe(ctx context.Context, handle func(domain.Event)) {
	sub := b.client.Subscribe(ctx, bridgeChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("bridge payload unreadable", zap.Error(err))
				continue
			}
			if env.Origin == b.instanceID {
				continue
			}
			handle(env.Event)
		}
	}
}
