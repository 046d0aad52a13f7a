package logs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	liveTailStreamPrefix = "minifaas:logs:"
	liveTailTTL          = 24 * time.Hour
	liveTailMaxEntries   = 10000
)

// Entry is one structured log line made available to live tailers, layered
// on top of the raw stdout the Collector appends to disk.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
	Function   string    `json:"function"`
	Line       string    `json:"line"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// LiveTail streams recently-collected log entries to subscribers in near
// real time. It is an optional enrichment over Collector's durable
// per-environment files: Collector is the system of record, LiveTail is a
// best-effort fan-out for operators watching a function live.
type LiveTail interface {
	Publish(ctx context.Context, functionID string, entry Entry) error
	Tail(ctx context.Context, functionID string) (<-chan Entry, error)
}

// NopLiveTail discards published entries and serves tailers nothing. It is
// the default when live tail is not enabled in the configuration.
type NopLiveTail struct{}

func (NopLiveTail) Publish(context.Context, string, Entry) error { return nil }

func (NopLiveTail) Tail(ctx context.Context, _ string) (<-chan Entry, error) {
	ch := make(chan Entry)
	close(ch)
	return ch, nil
}

// RedisLiveTail publishes entries onto a capped Redis stream per function
// and serves tailers via blocking XREAD.
type RedisLiveTail struct {
	redis *redis.Client
}

func NewRedisLiveTail(client *redis.Client) *RedisLiveTail {
	return &RedisLiveTail{redis: client}
}

func (s *RedisLiveTail) Publish(ctx context.Context, functionID string, entry Entry) error {
	key := liveTailStreamPrefix + functionID

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}

	if _, err := s.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: key,
		MaxLen: liveTailMaxEntries,
		Approx: true,
		Values: map[string]interface{}{"data": string(data)},
	}).Result(); err != nil {
		return fmt.Errorf("xadd: %w", err)
	}

	s.redis.Expire(ctx, key, liveTailTTL)
	return nil
}

func (s *RedisLiveTail) Tail(ctx context.Context, functionID string) (<-chan Entry, error) {
	key := liveTailStreamPrefix + functionID
	ch := make(chan Entry, 100)

	go func() {
		defer close(ch)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			streams, err := s.redis.XRead(ctx, &redis.XReadArgs{
				Streams: []string{key, lastID},
				Count:   100,
				Block:   time.Second,
			}).Result()

			if err == redis.Nil {
				continue
			}
			if err != nil {
				return
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					lastID = msg.ID

					data, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}

					var entry Entry
					if err := json.Unmarshal([]byte(data), &entry); err != nil {
						continue
					}

					select {
					case ch <- entry:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch, nil
}
