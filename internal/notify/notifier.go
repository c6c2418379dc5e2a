// Package notify announces new matches to the delivery side over Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// MatchCreated is the message published for every new or re-activated match.
type MatchCreated struct {
	MatchID   uint64    `json:"match_id"`
	UserIDs   [2]uint64 `json:"user_ids"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher is the transport the notifier writes to.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisNotifier publishes MatchCreated events as JSON on one channel.
type RedisNotifier struct {
	pub     Publisher
	channel string
}

// NewRedisNotifier builds a notifier that publishes on channel.
func NewRedisNotifier(pub Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{pub: pub, channel: channel}
}

// NotifyMatch publishes the event. Delivery to the users happens elsewhere.
func (n *RedisNotifier) NotifyMatch(ctx context.Context, ev MatchCreated) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode match event: %w", err)
	}
	if err := n.pub.Publish(ctx, n.channel, payload); err != nil {
		return fmt.Errorf("publish match %d: %w", ev.MatchID, err)
	}
	return nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) NotifyMatch(context.Context, MatchCreated) error { return nil }
