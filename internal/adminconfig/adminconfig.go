// Package adminconfig serves the shared admin documents (baselines, exclusions, default preview
// cards and custom roster entries) through a short-TTL cache, and applies admin edits to them.
//
// Reads never fail: when the document store cannot be reached the last good copy is served,
// or an empty document if none was ever loaded. Writes surface every error to the admin caller.
package adminconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/listenupapp/binderkeep/internal/validation"
)

// Document names.
const (
	DocBaselines     = "baselines"
	DocExclusions    = "exclusions"
	DocDefaultCards  = "default_cards"
	DocCustomEntries = "custom_entries"
)

// Documents lists every admin document name.
var Documents = []string{DocBaselines, DocExclusions, DocDefaultCards, DocCustomEntries}

// DefaultCacheTTL is how long a document is served from cache before it is refetched.
const DefaultCacheTTL = 5 * time.Minute

// DocumentStore is shared storage for named admin documents.
//
// GetDocument returns nil when the document does not exist. PutDocument enforces the
// admin allow-list and returns errors.ErrForbidden for actors not on it.
type DocumentStore interface {
	GetDocument(ctx context.Context, name string) ([]byte, error)
	PutDocument(ctx context.Context, name string, body []byte, actor string) error
}

// Service reads and writes admin documents.
type Service struct {
	store     DocumentStore
	cache     *ristretto.Cache[string, []byte]
	ttl       time.Duration
	validator *validation.Validator
	logger    *slog.Logger

	// lastGood keeps the most recent successful read of each document so an
	// unreachable store degrades to stale data instead of empty data.
	mu       sync.RWMutex
	lastGood map[string][]byte
}

// New creates a service over store. A non-positive ttl uses DefaultCacheTTL.
func New(store DocumentStore, ttl time.Duration, logger *slog.Logger) (*Service, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e3,
		MaxCost:     64 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin document cache: %w", err)
	}

	return &Service{
		store:     store,
		cache:     cache,
		ttl:       ttl,
		validator: validation.New(),
		logger:    logger,
		lastGood:  make(map[string][]byte),
	}, nil
}

// Close releases the cache.
func (s *Service) Close() {
	s.cache.Close()
}

// Prime loads every document into the cache. It returns the first read error, after
// attempting every document.
func (s *Service) Prime(ctx context.Context) error {
	var firstErr error
	for _, name := range Documents {
		body, err := s.store.GetDocument(ctx, name)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("prime %s: %w", name, err)
			}
			continue
		}
		s.remember(name, body)
	}
	return firstErr
}

// Invalidate drops every cached document. The next read goes to the store.
func (s *Service) Invalidate() {
	s.cache.Clear()
}

// read returns the body of a document: cached, else fetched, else the last good copy.
func (s *Service) read(ctx context.Context, name string) []byte {
	if body, ok := s.cache.Get(name); ok {
		return body
	}

	body, err := s.store.GetDocument(ctx, name)
	if err != nil {
		s.mu.RLock()
		stale := s.lastGood[name]
		s.mu.RUnlock()
		s.logger.Warn("admin document unavailable, serving last good copy",
			"name", name, "has_copy", stale != nil, "error", err)
		return stale
	}

	s.remember(name, body)
	return body
}

func (s *Service) remember(name string, body []byte) {
	if body == nil {
		// Cache absence too, as an empty body.
		body = []byte{}
	}
	s.cache.SetWithTTL(name, body, int64(len(body))+1, s.ttl)
	s.cache.Wait()

	s.mu.Lock()
	s.lastGood[name] = body
	s.mu.Unlock()
}

// decode unmarshals a document body. Empty or corrupt bodies yield the zero value.
func decode[T any](logger *slog.Logger, name string, body []byte) T {
	var doc T
	if len(body) == 0 {
		return doc
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		logger.Warn("corrupt admin document, treating as empty", "name", name, "error", err)
		var zero T
		return zero
	}
	return doc
}

// write marshals doc, stores it as actor and drops the cached copy.
func (s *Service) write(ctx context.Context, name string, doc any, actor string) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := s.store.PutDocument(ctx, name, body, actor); err != nil {
		return err
	}

	s.cache.Del(name)
	s.mu.Lock()
	s.lastGood[name] = body
	s.mu.Unlock()
	return nil
}

// fresh reads a document straight from the store for a read-modify-write.
func fresh[T any](ctx context.Context, s *Service, name string) (T, error) {
	body, err := s.store.GetDocument(ctx, name)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read %s: %w", name, err)
	}
	return decode[T](s.logger, name, body), nil
}
