package repositories

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard-service/models"
)

type countingProjects struct {
	ProjectRepository
	lists int
}

func (r *countingProjects) ListByOwner(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Project, error) {
	r.lists++
	return r.ProjectRepository.ListByOwner(ctx, ownerID, filter)
}

func newCachedStore(t *testing.T) (*Store, *countingProjects, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	base := newSQLiteStore(t)
	counter := &countingProjects{ProjectRepository: base.Projects}
	base.Projects = counter

	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return WithCache(base, client, time.Minute), counter, mr
}

func TestCacheListMissThenHit(t *testing.T) {
	ctx := context.Background()
	store, counter, mr := newCachedStore(t)
	seedUser(t, store, "alice", "alice@example.com")
	require.NoError(t, store.Projects.Create(ctx, &models.Project{
		ID: "p0001", Name: "Website", Status: models.ProjectInProgress,
		Priority: models.ProjectPriorityHigh, OwnerID: "alice",
	}))

	first, err := store.Projects.ListByOwner(ctx, "alice", models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, counter.lists)
	assert.True(t, mr.Exists(projectsCacheKey("alice")))
	ttl := mr.TTL(projectsCacheKey("alice"))
	assert.True(t, ttl > 0 && ttl <= time.Minute, "unexpected TTL %v", ttl)

	second, err := store.Projects.ListByOwner(ctx, "alice", models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "p0001", second[0].ID)
	require.NotNil(t, second[0].Owner)
	assert.Equal(t, "alice@example.com", second[0].Owner.Email)
	assert.Equal(t, 1, counter.lists, "second list served from cache")
}

func TestCacheBypassedForFilteredLists(t *testing.T) {
	ctx := context.Background()
	store, counter, mr := newCachedStore(t)

	_, err := store.Projects.ListByOwner(ctx, "alice", models.ListFilter{Search: "web"})
	require.NoError(t, err)
	_, err = store.Projects.ListByOwner(ctx, "alice", models.ListFilter{Search: "web"})
	require.NoError(t, err)

	assert.Equal(t, 2, counter.lists)
	assert.False(t, mr.Exists(projectsCacheKey("alice")))
}

func TestCacheEvictedOnWrite(t *testing.T) {
	ctx := context.Background()
	store, counter, mr := newCachedStore(t)
	seedUser(t, store, "alice", "alice@example.com")

	_, err := store.Projects.ListByOwner(ctx, "alice", models.ListFilter{})
	require.NoError(t, err)
	require.True(t, mr.Exists(projectsCacheKey("alice")))

	require.NoError(t, store.Projects.Create(ctx, &models.Project{
		ID: "p0001", Name: "Website", Status: models.ProjectInProgress,
		Priority: models.ProjectPriorityHigh, OwnerID: "alice",
	}))
	assert.False(t, mr.Exists(projectsCacheKey("alice")))

	list, err := store.Projects.ListByOwner(ctx, "alice", models.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, counter.lists)

	_, err = store.Projects.SoftDelete(ctx, "p0001", "alice", time.Now())
	require.NoError(t, err)
	assert.False(t, mr.Exists(projectsCacheKey("alice")))
}

func TestCacheFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	store, counter, mr := newCachedStore(t)
	mr.Close()

	list, err := store.Projects.ListByOwner(ctx, "alice", models.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 1, counter.lists)
}

func TestCacheCorruptEntryDropped(t *testing.T) {
	ctx := context.Background()
	store, counter, mr := newCachedStore(t)
	require.NoError(t, mr.Set(tasksCacheKey("alice"), "not json"))

	tasks, err := store.Tasks.ListByUser(ctx, "alice", models.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, 0, counter.lists)
	// Repopulated with the fresh, empty list.
	got, err := mr.Get(tasksCacheKey("alice"))
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestWithCacheNilClient(t *testing.T) {
	base := newSQLiteStore(t)
	assert.Same(t, base, WithCache(base, nil, time.Minute))
}
