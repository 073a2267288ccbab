package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"taskboard-service/logging"
	"taskboard-service/models"
)

// WithCache wraps the project and task repositories of store with a Redis
// read-through cache for unfiltered list calls. A nil client returns store
// unchanged.
func WithCache(store *Store, client *redis.Client, ttl time.Duration) *Store {
	if store == nil {
		panic("repositories.WithCache: store is nil")
	}
	if client == nil {
		return store
	}
	if ttl < 0 {
		ttl = 0
	}
	lc := &listCache{redis: client, ttl: ttl}
	return &Store{
		Users:    store.Users,
		Projects: &cachedProjects{ProjectRepository: store.Projects, cache: lc},
		Tasks:    &cachedTasks{TaskRepository: store.Tasks, cache: lc},
		Comments: store.Comments,
		ping: func(ctx context.Context) error {
			if err := store.Ping(ctx); err != nil {
				return err
			}
			return client.Ping(ctx).Err()
		},
		close: func(ctx context.Context) error {
			return errors.Join(store.Close(ctx), client.Close())
		},
	}
}

type listCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func (c *listCache) load(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Logger.Warnf("Event ID: CACHE_READ_FAILED, Description: Falling back to storage for %s: %v", key, err)
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logging.Logger.Warnf("Event ID: CACHE_DECODE_FAILED, Description: Dropping cache entry %s: %v", key, err)
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *listCache) store(ctx context.Context, key string, value interface{}) {
	if c.ttl == 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logging.Logger.Warnf("Event ID: CACHE_WRITE_FAILED, Description: Could not cache %s: %v", key, err)
	}
}

func (c *listCache) evict(ctx context.Context, key string) {
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		logging.Logger.Warnf("Event ID: CACHE_EVICT_FAILED, Description: Could not evict %s: %v", key, err)
	}
}

func projectsCacheKey(ownerID string) string {
	return "taskboard:projects:" + ownerID
}

func tasksCacheKey(userID string) string {
	return "taskboard:tasks:" + userID
}

type cachedProjects struct {
	ProjectRepository
	cache *listCache
}

func (r *cachedProjects) ListByOwner(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Project, error) {
	if !filter.Zero() {
		return r.ProjectRepository.ListByOwner(ctx, ownerID, filter)
	}
	key := projectsCacheKey(ownerID)
	var cached []models.Project
	if r.cache.load(ctx, key, &cached) {
		return cached, nil
	}
	projects, err := r.ProjectRepository.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	r.cache.store(ctx, key, projects)
	return projects, nil
}

func (r *cachedProjects) Create(ctx context.Context, project *models.Project) error {
	if err := r.ProjectRepository.Create(ctx, project); err != nil {
		return err
	}
	r.cache.evict(ctx, projectsCacheKey(project.OwnerID))
	return nil
}

func (r *cachedProjects) Update(ctx context.Context, id, ownerID string, patch models.ProjectPatch, now time.Time) (*models.Project, error) {
	project, err := r.ProjectRepository.Update(ctx, id, ownerID, patch, now)
	if err != nil {
		return nil, err
	}
	r.cache.evict(ctx, projectsCacheKey(ownerID))
	return project, nil
}

func (r *cachedProjects) SoftDelete(ctx context.Context, id, ownerID string, now time.Time) (*models.Project, error) {
	project, err := r.ProjectRepository.SoftDelete(ctx, id, ownerID, now)
	if err != nil {
		return nil, err
	}
	r.cache.evict(ctx, projectsCacheKey(ownerID))
	return project, nil
}

type cachedTasks struct {
	TaskRepository
	cache *listCache
}

func (r *cachedTasks) ListByUser(ctx context.Context, userID string, filter models.ListFilter) ([]models.Task, error) {
	if !filter.Zero() {
		return r.TaskRepository.ListByUser(ctx, userID, filter)
	}
	key := tasksCacheKey(userID)
	var cached []models.Task
	if r.cache.load(ctx, key, &cached) {
		return cached, nil
	}
	tasks, err := r.TaskRepository.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	r.cache.store(ctx, key, tasks)
	return tasks, nil
}

func (r *cachedTasks) Create(ctx context.Context, task *models.Task) error {
	if err := r.TaskRepository.Create(ctx, task); err != nil {
		return err
	}
	r.cache.evict(ctx, tasksCacheKey(task.UserID))
	return nil
}

func (r *cachedTasks) Update(ctx context.Context, id, userID string, patch models.TaskPatch, now time.Time) (*models.Task, error) {
	task, err := r.TaskRepository.Update(ctx, id, userID, patch, now)
	if err != nil {
		return nil, err
	}
	r.cache.evict(ctx, tasksCacheKey(userID))
	return task, nil
}

func (r *cachedTasks) SoftDelete(ctx context.Context, id, userID string, now time.Time) (*models.Task, error) {
	task, err := r.TaskRepository.SoftDelete(ctx, id, userID, now)
	if err != nil {
		return nil, err
	}
	r.cache.evict(ctx, tasksCacheKey(userID))
	return task, nil
}
