package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hostel-complaint-api/models"

	"github.com/redis/go-redis/v9"
)

var ErrRealtimeDisabled = errors.New("realtime notifications are not configured")

// NotificationHub fans stored notifications out to live listeners.
type NotificationHub interface {
	Publish(ctx context.Context, n *models.Notification) error
	// Subscribe streams raw JSON payloads for userID until the returned
	// close function is called or ctx ends.
	Subscribe(ctx context.Context, userID string) (<-chan []byte, func(), error)
}

func notificationChannel(userID string) string {
	return "notifications:" + userID
}

type RedisNotificationHub struct {
	client *redis.Client
}

func NewRedisNotificationHub(client *redis.Client) *RedisNotificationHub {
	return &RedisNotificationHub{client: client}
}

func (h *RedisNotificationHub) Publish(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return h.client.Publish(ctx, notificationChannel(n.UserID), payload).Err()
}

func (h *RedisNotificationHub) Subscribe(ctx context.Context, userID string) (<-chan []byte, func(), error) {
	pubsub := h.client.Subscribe(ctx, notificationChannel(userID))
	// Receive blocks until the subscription is confirmed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", userID, err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { _ = pubsub.Close() }, nil
}

// NopNotificationHub is used when Redis is not configured.
type NopNotificationHub struct{}

func (NopNotificationHub) Publish(context.Context, *models.Notification) error { return nil }

func (NopNotificationHub) Subscribe(context.Context, string) (<-chan []byte, func(), error) {
	return nil, nil, ErrRealtimeDisabled
}
