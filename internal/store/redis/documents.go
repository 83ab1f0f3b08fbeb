package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/listenupapp/binderkeep/internal/store"
)

const (
	docPrefix  = "binderkeep:admin:doc:"
	metaPrefix = "binderkeep:admin:meta:"
)

// DocumentStore keeps admin documents as plain string keys, with write metadata in a
// companion hash.
type DocumentStore struct {
	client *redis.Client
	admins store.AllowList
	logger *slog.Logger
	now    func() time.Time
}

// NewDocumentStore creates a document store over client. Writes are checked against admins.
func NewDocumentStore(client *redis.Client, admins store.AllowList, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{
		client: client,
		admins: admins,
		logger: logger,
		now:    time.Now,
	}
}

// GetDocument returns the body of the named document, or nil when it does not exist.
func (s *DocumentStore) GetDocument(ctx context.Context, name string) ([]byte, error) {
	body, err := s.client.Get(ctx, docPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get admin document %s: %w", name, err)
	}
	return body, nil
}

// PutDocument replaces the named document. actor must be on the allow-list.
func (s *DocumentStore) PutDocument(ctx context.Context, name string, body []byte, actor string) error {
	if err := s.admins.Check(actor); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, docPrefix+name, body, 0)
		pipe.HSet(ctx, metaPrefix+name,
			"updated_at", s.now().UTC().Format(time.RFC3339Nano),
			"updated_by", actor,
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: put admin document %s: %w", name, err)
	}

	s.logger.Info("admin document updated", "name", name, "actor", actor)
	return nil
}

// UpdatedBy returns the actor of the last write to the named document, or "" if unknown.
func (s *DocumentStore) UpdatedBy(ctx context.Context, name string) (string, error) {
	actor, err := s.client.HGet(ctx, metaPrefix+name, "updated_by").Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis: get admin document metadata %s: %w", name, err)
	}
	return actor, nil
}
