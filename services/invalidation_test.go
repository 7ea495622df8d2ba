package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"case_law_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// Databases opened by other tests keep their opener goroutine alive
var ignoreDBOpener = goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener")

func TestResultSetBus(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreDBOpener)

	bus := NewResultSetBus()
	assert.Equal(t, uint64(0), bus.Generation())

	ch, cancel := bus.Subscribe()

	// Publishing never blocks and notifications coalesce to the latest
	bus.Publish()
	bus.Publish()
	assert.Equal(t, uint64(3), bus.Publish())

	select {
	case gen := <-ch:
		assert.Equal(t, uint64(3), gen)
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after cancel is still safe
	bus.Publish()
	assert.Equal(t, uint64(4), bus.Generation())
}

func TestResultSetBusConcurrentPublish(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreDBOpener)

	bus := NewResultSetBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), bus.Generation())
}

func TestCaseQueryCache(t *testing.T) {
	db := setupTestDB(t)
	bus := NewResultSetBus()
	query := NewCaseQueryService(db)
	cache := NewCaseQueryCache(query, bus, 0)
	mutations := NewCaseMutationService(db, bus, nil)
	ctx := context.Background()

	_, err := mutations.CreateCase(ctx, validForm())
	require.NoError(t, err)

	first, err := cache.ListCases(ctx, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, cache.Len())

	// A row written behind the cache's back is not seen until invalidation
	seedCase(t, db, models.Case{Title: "Hidden", Court: "C", Date: "2000-01-01"})
	cached, err := cache.ListCases(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// Callers may modify what they get back
	cached[0].Title = "mutated"
	again, _ := cache.ListCases(ctx, nil)
	assert.NotEqual(t, "mutated", again[0].Title)

	// Any successful write makes every cached list stale
	_, err = mutations.CreateCase(ctx, validForm())
	require.NoError(t, err)
	fresh, err := cache.ListCases(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)

	filtered, err := cache.ListCases(ctx, &models.SearchFilters{Query: "hidden"})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.Equal(t, 2, cache.Len())
}

func TestCaseQueryCacheBound(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCaseQueryCache(NewCaseQueryService(db), NewResultSetBus(), 3)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_, err := cache.ListCases(ctx, &models.SearchFilters{Query: fmt.Sprintf("q%d", i)})
		require.NoError(t, err)
		require.LessOrEqual(t, cache.Len(), 3)
	}
	assert.Equal(t, 3, cache.Len())
}

func TestCaseQueryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	db := setupTestDB(t)
	seedCase(t, db, models.Case{Title: "Alpha", Court: "C", Date: "2000-01-01"})
	cache := NewCaseQueryCache(NewCaseQueryService(db), NewResultSetBus(), 2)
	ctx := context.Background()

	a := &models.SearchFilters{Query: "alpha"}
	b := &models.SearchFilters{Query: "beta"}
	_, err := cache.ListCases(ctx, a)
	require.NoError(t, err)
	_, err = cache.ListCases(ctx, b)
	require.NoError(t, err)

	// Touch a so b becomes the oldest
	_, err = cache.ListCases(ctx, a)
	require.NoError(t, err)
	_, err = cache.ListCases(ctx, &models.SearchFilters{Query: "gamma"})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	// a is still served from cache, so a row written behind its back stays hidden
	seedCase(t, db, models.Case{Title: "Alpha Two", Court: "C", Date: "2001-01-01"})
	cached, err := cache.ListCases(ctx, a)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestCaseQueryCacheRun(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreDBOpener)

	db := setupTestDB(t)
	bus := NewResultSetBus()
	cache := NewCaseQueryCache(NewCaseQueryService(db), bus, 0)

	_, err := cache.ListCases(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cache.Run(ctx)
		close(done)
	}()

	// Run subscribes asynchronously; keep publishing until it drops the entry
	assert.Eventually(t, func() bool {
		bus.Publish()
		return cache.Len() == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
