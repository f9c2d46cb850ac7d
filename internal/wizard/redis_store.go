package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	sessionKeyPrefix = "booking:session:"
	maxUpdateRetries = 5
)

var ErrUpdateConflict = errors.New("wizard: session update kept conflicting")

// RedisStore keeps sessions as JSON values with a sliding TTL. Update runs
// under WATCH so concurrent writers to one session retry instead of
// clobbering each other.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("wizard: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("lumiere.internal.wizard.store")
	}
	return &RedisStore{redis: client, ttl: ttl, tracer: tracer}
}

func (s *RedisStore) Create(ctx context.Context, sess Session) error {
	ctx, span := s.tracer.Start(ctx, "wizard.create_session", trace.WithAttributes(attribute.String("session.id", sess.ID)))
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("wizard: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("wizard: failed to persist session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (Session, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.load_session", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		span.RecordError(err)
		return Session{}, fmt.Errorf("wizard: failed to load session: %w", err)
	}
	sess, err := decodeSession(data)
	if err != nil {
		span.RecordError(err)
		return Session{}, err
	}
	return sess, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.update_session", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	key := sessionKey(id)
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		var updated Session
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return ErrSessionNotFound
				}
				return fmt.Errorf("wizard: failed to load session: %w", err)
			}
			sess, err := decodeSession(data)
			if err != nil {
				return err
			}
			if err := fn(&sess); err != nil {
				return err
			}
			out, err := json.Marshal(sess)
			if err != nil {
				return fmt.Errorf("wizard: failed to marshal session: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, out, s.ttl)
				return nil
			})
			updated = sess
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			span.AddEvent("update conflict", trace.WithAttributes(attribute.Int("attempt", attempt+1)))
			continue
		}
		if err != nil {
			span.RecordError(err)
			return Session{}, err
		}
		return updated, nil
	}
	span.RecordError(ErrUpdateConflict)
	return Session{}, ErrUpdateConflict
}

func decodeSession(data []byte) (Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("wizard: failed to decode session: %w", err)
	}
	return sess, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

var _ Store = (*RedisStore)(nil)
