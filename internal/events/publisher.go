// Package events publishes PRD lifecycle events and keeps a short
// recent-signal cache in Redis. The whole package is optional: a nil
// Publisher is a no-op, and the API runs without Redis configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tencoder/tencoder-api/internal/projects/domain"
)

const (
	prdEventChannelPrefix = "prd:events:"     // Pub/Sub channel per project: prd:events:{project_id}
	recentSignalPrefix    = "signals:recent:" // List of recent signals: signals:recent:{project_id}

	recentSignalLimit = 10
	recentSignalTTL   = 24 * time.Hour
)

// Event is the payload published on a project's PRD channel.
type Event struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"projectId"`
	PRDID     string    `json:"prdId"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PRDActivated announces that a PRD became the project's active one.
// Failures are returned for logging but must not fail the request.
func (p *Publisher) PRDActivated(ctx context.Context, prd *domain.PRD) error {
	if p == nil || p.client == nil {
		return nil
	}

	ev := Event{
		Type:      "prd.activated",
		ProjectID: prd.ProjectID,
		PRDID:     prd.ID,
		Title:     prd.Title,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.client.Publish(ctx, prdEventChannelPrefix+prd.ProjectID, payload).Err()
}

// CacheSignal pushes a signal onto the project's recent list, trimmed
// to the newest few with a TTL so idle projects age out.
func (p *Publisher) CacheSignal(ctx context.Context, sig *domain.Signal) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}

	key := recentSignalPrefix + sig.ProjectID
	pipe := p.client.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, recentSignalLimit-1)
	pipe.Expire(ctx, key, recentSignalTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// RecentSignals reads the cached recent signals, newest first. An
// empty slice simply means a cold cache.
func (p *Publisher) RecentSignals(ctx context.Context, projectID string) ([]domain.Signal, error) {
	if p == nil || p.client == nil {
		return nil, nil
	}

	raw, err := p.client.LRange(ctx, recentSignalPrefix+projectID, 0, recentSignalLimit-1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Signal, 0, len(raw))
	for _, item := range raw {
		var s domain.Signal
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			return nil, fmt.Errorf("decode cached signal: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}
