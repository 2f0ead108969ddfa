package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// VideosChannel carries videos_updated notifications between instances.
	VideosChannel     = "airtime:videos"
	EventVideosUpdate = "videos_updated"
	eventTTL          = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance invalidation.
type redisPayload struct {
	Event  string `json:"event"`
	Origin string `json:"origin"`
	At     int64  `json:"at"`
}

// RedisPubSub publishes and receives videos_updated over Redis pub/sub.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge for video list changes.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPubSub{client: client, logger: logger}
}

// PublishVideosUpdated announces a list change made by origin.
func (r *RedisPubSub) PublishVideosUpdated(origin string) error {
	body, err := json.Marshal(redisPayload{Event: EventVideosUpdate, Origin: origin, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTTL)
	defer cancel()
	return r.client.Publish(ctx, VideosChannel, body).Err()
}

// SubscribeVideosUpdated calls handler with the origin of every change notification.
// Returns a cancel function to stop the subscription.
func (r *RedisPubSub) SubscribeVideosUpdated(handler func(origin string)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, VideosChannel)
	if _, err = pubsub.Receive(ctx); err != nil {
		cancelCtx()
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p redisPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil || p.Event != EventVideosUpdate {
					r.logger.Debug("ignoring pub/sub message", zap.String("channel", msg.Channel))
					continue
				}
				handler(p.Origin)
			}
		}
	}()
	return cancelCtx, nil
}
