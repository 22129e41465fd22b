package scheme

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"janseva/internal/eligibility"
	domain "janseva/pkg/domain"
)

// countingStore observes how often the inner store is hit.
type countingStore struct {
	Store
	gets int
}

func (c *countingStore) Get(ctx context.Context, id string) (*Scheme, error) {
	c.gets++
	return c.Store.Get(ctx, id)
}

func newCacheFixture(t *testing.T) (*CachedStore, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingStore{Store: NewInMemoryStore()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCachedStore(inner, client, time.Minute, logger), inner, mr
}

func seedScheme() *Scheme {
	return &Scheme{
		ID:                "pm-kisan",
		Name:              "PM-KISAN",
		Category:          "Agriculture",
		Deadline:          time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		RequiredDocuments: []domain.DocumentKind{DocAadhaar, DocBankDetails},
		Rules: []eligibility.Rule{
			{Name: "bank_account_linked", Fact: "bank_linked", Op: eligibility.OpEq, Value: true},
		},
	}
}

func TestCachedStoreReadThrough(t *testing.T) {
	cache, inner, _ := newCacheFixture(t)
	ctx := context.Background()
	require.NoError(t, cache.Upsert(ctx, seedScheme()))

	first, err := cache.Get(ctx, "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)

	second, err := cache.Get(ctx, "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets, "second read must come from the cache")

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.RequiredDocuments, second.RequiredDocuments)
	require.Len(t, second.Rules, 1)
	assert.Equal(t, eligibility.OpEq, second.Rules[0].Op)
}

func TestCachedStoreUpsertInvalidates(t *testing.T) {
	cache, inner, _ := newCacheFixture(t)
	ctx := context.Background()
	require.NoError(t, cache.Upsert(ctx, seedScheme()))

	_, err := cache.Get(ctx, "pm-kisan")
	require.NoError(t, err)

	updated := seedScheme()
	updated.Name = "PM Kisan Samman Nidhi"
	require.NoError(t, cache.Upsert(ctx, updated))

	got, err := cache.Get(ctx, "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, "PM Kisan Samman Nidhi", got.Name)
	assert.Equal(t, 2, inner.gets)
}

func TestCachedStoreDegradesWhenRedisDown(t *testing.T) {
	cache, inner, mr := newCacheFixture(t)
	ctx := context.Background()
	require.NoError(t, cache.Upsert(ctx, seedScheme()))
	mr.Close()

	got, err := cache.Get(ctx, "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, "PM-KISAN", got.Name)
	assert.Equal(t, 1, inner.gets)
}

func TestCachedStoreCorruptEntryFallsBack(t *testing.T) {
	cache, inner, mr := newCacheFixture(t)
	ctx := context.Background()
	require.NoError(t, cache.Upsert(ctx, seedScheme()))
	require.NoError(t, mr.Set("scheme:pm-kisan", "{not json"))

	got, err := cache.Get(ctx, "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, "PM-KISAN", got.Name)
	assert.Equal(t, 1, inner.gets)
}
