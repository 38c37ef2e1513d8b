package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// EventPublisher fans offence change notifications out to downstream
// consumers over a pub/sub channel.
type EventPublisher interface {
	Publish(ctx context.Context, event OffenceEvent) error
	Close() error
}

type OffenceEvent struct {
	EventType   string          `json:"eventType"`
	OffenceCode string          `json:"offenceCode"`
	Offence     json.RawMessage `json:"offence,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

type eventPublisher struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewEventPublisher(log *logger.Logger) (EventPublisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "offence-events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &eventPublisher{
		log:     log.With("client", "RedisEventPublisher"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (p *eventPublisher) Publish(ctx context.Context, event OffenceEvent) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("event publisher not initialized")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

func (p *eventPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
