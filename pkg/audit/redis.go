package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLogger logs audit events to a Redis list (LPUSH), trimmed to
// maxEvents, so a fleet of netfabctl invocations can share one audit
// trail without each host owning its own log file. Query scans the
// list and applies the same filter FileLogger does; Redis has no
// native query language for this shape, so filtering happens
// client-side just as it does when FileLogger scans its JSON-lines
// file.
type RedisLogger struct {
	client    *redis.Client
	key       string
	maxEvents int64
}

// NewRedisLogger dials addr and returns a logger that appends events
// under key, keeping at most maxEvents (0 means unbounded).
func NewRedisLogger(addr, key string, maxEvents int64) (*RedisLogger, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisLogger{client: client, key: key, maxEvents: maxEvents}, nil
}

func (l *RedisLogger) Log(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.client.LPush(ctx, l.key, data).Err(); err != nil {
		return fmt.Errorf("lpush audit event: %w", err)
	}
	if l.maxEvents > 0 {
		if err := l.client.LTrim(ctx, l.key, 0, l.maxEvents-1).Err(); err != nil {
			return fmt.Errorf("trim audit log: %w", err)
		}
	}
	return nil
}

func (l *RedisLogger) Query(filter Filter) ([]*Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange audit log: %w", err)
	}

	var events []*Event
	for _, item := range raw {
		var event Event
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		if matchesFilterStandalone(&event, filter) {
			events = append(events, &event)
		}
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(events) {
			events = nil
		} else {
			events = events[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(events) {
		events = events[:filter.Limit]
	}
	return events, nil
}

func (l *RedisLogger) Close() error {
	return l.client.Close()
}

// matchesFilterStandalone duplicates FileLogger.matchesFilter's
// logic; it isn't a method on FileLogger because RedisLogger has no
// FileLogger to embed and the check is a handful of field
// comparisons, not worth a shared exported helper for two call sites.
func matchesFilterStandalone(event *Event, filter Filter) bool {
	if filter.Context != "" && event.Context != filter.Context {
		return false
	}
	if filter.Operation != "" && event.Operation != filter.Operation {
		return false
	}
	if !filter.StartTime.IsZero() && event.Timestamp.Before(filter.StartTime) {
		return false
	}
	if !filter.EndTime.IsZero() && event.Timestamp.After(filter.EndTime) {
		return false
	}
	if filter.SuccessOnly && !event.Success {
		return false
	}
	if filter.FailureOnly && event.Success {
		return false
	}
	return true
}
