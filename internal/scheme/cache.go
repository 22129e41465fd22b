package scheme

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domain "janseva/pkg/domain"
)

// CachedStore is a read-through cache in front of a Store. Scheme reference
// data changes rarely, so a short TTL keeps reviewers off the database
// without risking long staleness windows.
//
// Cache failures degrade to the inner store; a broken Redis must never block
// the application lifecycle.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(id string) string { return "scheme:" + id }

func (c *CachedStore) Get(ctx context.Context, id string) (*Scheme, error) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err == nil {
		var cached cachedScheme
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached.toScheme(), nil
		}
		// Corrupt entry: fall through to the store and rewrite it.
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "scheme cache read failed", "error", err, "scheme_id", id)
	}

	scheme, err := c.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, scheme)
	return scheme, nil
}

func (c *CachedStore) List(ctx context.Context) ([]*Scheme, error) {
	// Listing goes straight to the store; only point lookups are hot.
	return c.inner.List(ctx)
}

func (c *CachedStore) Upsert(ctx context.Context, scheme *Scheme) error {
	if err := c.inner.Upsert(ctx, scheme); err != nil {
		return err
	}
	if err := c.client.Del(ctx, cacheKey(scheme.ID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "scheme cache invalidation failed", "error", err, "scheme_id", scheme.ID)
	}
	return nil
}

func (c *CachedStore) fill(ctx context.Context, scheme *Scheme) {
	payload, err := json.Marshal(newCachedScheme(scheme))
	if err != nil {
		c.logger.WarnContext(ctx, "scheme cache marshal failed", "error", err, "scheme_id", scheme.ID)
		return
	}
	if err := c.client.Set(ctx, cacheKey(scheme.ID), payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "scheme cache write failed", "error", err, "scheme_id", scheme.ID)
	}
}

// cachedScheme is the wire shape stored in Redis. Kept separate from Scheme
// so catalog model changes do not silently invalidate serialized entries.
type cachedScheme struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Benefits          string          `json:"benefits"`
	Deadline          time.Time       `json:"deadline"`
	RequiredDocuments []string        `json:"required_documents"`
	Rules             json.RawMessage `json:"rules"`
}

func newCachedScheme(s *Scheme) cachedScheme {
	required := make([]string, len(s.RequiredDocuments))
	for i, kind := range s.RequiredDocuments {
		required[i] = string(kind)
	}
	rules, _ := json.Marshal(s.Rules)
	return cachedScheme{
		ID:                s.ID,
		Name:              s.Name,
		Description:       s.Description,
		Category:          s.Category,
		Benefits:          s.Benefits,
		Deadline:          s.Deadline,
		RequiredDocuments: required,
		Rules:             rules,
	}
}

func (c cachedScheme) toScheme() *Scheme {
	scheme := &Scheme{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Category:    c.Category,
		Benefits:    c.Benefits,
		Deadline:    c.Deadline,
	}
	for _, kind := range c.RequiredDocuments {
		scheme.RequiredDocuments = append(scheme.RequiredDocuments, domain.DocumentKind(kind))
	}
	if len(c.Rules) > 0 {
		_ = json.Unmarshal(c.Rules, &scheme.Rules)
	}
	return scheme
}
