package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/cache"
	"github.com/metrix-hq/metrix/web/internal/metrix/metrixtest"
	"github.com/metrix-hq/metrix/web/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore(10)

	var got map[string]int
	ok, err := s.Get(ctx, "missing", &got)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))
	ok, err = s.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, got["a"])
	require.NoError(t, s.Ping(ctx))
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore(10)
	require.NoError(t, s.Set(ctx, "k", "v", 20*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	var v string
	ok, err := s.Get(ctx, "k", &v)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, s.Len())
}

func TestMemoryStoreSweepsPastCapacity(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore(1)
	require.NoError(t, s.Set(ctx, "old", "v", 10*time.Millisecond))
	time.Sleep(15 * time.Millisecond)
	require.NoError(t, s.Set(ctx, "new", "v", time.Minute))
	require.Equal(t, 1, s.Len())
}

func TestBackendCachesPlayerCards(t *testing.T) {
	fake := &metrixtest.Fake{
		PlayerFunc: func(_ context.Context, name string) (*models.PlayerProfile, error) {
			return &models.PlayerProfile{Name: name, Team: "Lakers", ImageURL: "img"}, nil
		},
	}
	b := cache.NewBackend(fake, cache.NewMemoryStore(10), time.Minute, quietLogger())

	for i := 0; i < 3; i++ {
		p, err := b.PlayerCard(context.Background(), "LeBron James")
		require.NoError(t, err)
		require.Equal(t, "Lakers", p.Team.String())
	}
	_, err := b.PlayerCard(context.Background(), " lebron james ")
	require.NoError(t, err)
	require.Len(t, fake.Calls("playercard"), 1)

	_, err = b.PlayerCard(context.Background(), "Luka Doncic")
	require.NoError(t, err)
	require.Len(t, fake.Calls("playercard"), 2)
}

func TestBackendSkipsCachingEmptyBundles(t *testing.T) {
	var bundle models.NewsletterBundle
	fake := &metrixtest.Fake{
		NewsletterFunc: func(context.Context, string) (*models.NewsletterBundle, error) {
			b := bundle
			return &b, nil
		},
	}
	b := cache.NewBackend(fake, cache.NewMemoryStore(10), time.Minute, quietLogger())

	_, err := b.Newsletter(context.Background(), "2025-01-01")
	require.NoError(t, err)
	bundle.News = []models.NewsStory{{Headline: "Trade"}}
	got, err := b.Newsletter(context.Background(), "2025-01-01")
	require.NoError(t, err)
	require.Len(t, got.News, 1)
	_, err = b.Newsletter(context.Background(), "2025-01-01")
	require.NoError(t, err)
	require.Len(t, fake.Calls("fetchsummaries"), 2)
}

func TestBackendDoesNotCacheErrors(t *testing.T) {
	fake := &metrixtest.Fake{}
	b := cache.NewBackend(fake, cache.NewMemoryStore(10), time.Minute, nil)
	_, err := b.PlayerCard(context.Background(), "Nobody")
	require.Error(t, err)
	_, err = b.PlayerCard(context.Background(), "Nobody")
	require.Error(t, err)
	require.Len(t, fake.Calls("playercard"), 2)
}

func TestAnswersSaveLoad(t *testing.T) {
	ctx := context.Background()
	answers := cache.NewAnswers(cache.NewMemoryStore(10), time.Minute)

	id, err := answers.Save(ctx, "kyrie threes", models.QueryAnswer{PlayerName: "Kyrie Irving", AnswerText: "x"})
	require.NoError(t, err)

	rec, ok, err := answers.Load(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "kyrie threes", rec.Query)
	require.Equal(t, "Kyrie Irving", rec.Answer.PlayerName)

	_, ok, err = answers.Load(ctx, "not-a-uuid")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = answers.Load(ctx, "3f1e0c52-3b5e-4c5a-9e39-1c1b6e9a2f00")
	require.NoError(t, err)
	require.False(t, ok)
}
