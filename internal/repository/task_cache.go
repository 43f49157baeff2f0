package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/AlbertPrograms/nodecs-backend/internal/config"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// taskCacheEntry mirrors model.Task with the hidden fields serialized.
// model.Task hides them from API JSON; the cache needs the full record
// because grading reads hidden test data on every submit.
type taskCacheEntry struct {
	ID                   int64    `json:"id"`
	Description          string   `json:"description"`
	TestData             []string `json:"test_data"`
	ExpectedOutput       []string `json:"expected_output"`
	HiddenTestData       []string `json:"hidden_test_data"`
	HiddenExpectedOutput []string `json:"hidden_expected_output"`
	PointValue           int      `json:"point_value"`
	Practicable          bool     `json:"practicable"`
}

// CachedTaskRepository wraps TaskRepository with a Redis read-through
// cache. Cache failures degrade to direct reads; they are logged, never
// surfaced.
type CachedTaskRepository struct {
	inner *TaskRepository
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewCachedTaskRepository creates a CachedTaskRepository.
func NewCachedTaskRepository(inner *TaskRepository, rdb *redis.Client, log zerolog.Logger) *CachedTaskRepository {
	return &CachedTaskRepository{
		inner: inner,
		rdb:   rdb,
		log:   log.With().Str("component", "task_cache").Logger(),
	}
}

// GetByID retrieves a task, preferring the cache.
func (r *CachedTaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	key := config.CacheKey.TaskKey(id)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err == nil {
		var entry taskCacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err == nil {
			return entry.toModel(), nil
		}
		r.log.Warn().Int64("task_id", id).Msg("Corrupt cache entry, falling through")
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn().Err(err).Msg("Task cache read failed")
	}

	task, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(fromModel(task)); err == nil {
		if err := r.rdb.Set(ctx, key, raw, config.TaskCacheTTL).Err(); err != nil {
			r.log.Warn().Err(err).Msg("Task cache write failed")
		}
	}

	return task, nil
}

// ListPracticableIDs retrieves the practicable id list, preferring the
// cache.
func (r *CachedTaskRepository) ListPracticableIDs(ctx context.Context) ([]int64, error) {
	key := config.CacheKey.PracticableTaskIDsKey()

	raw, err := r.rdb.Get(ctx, key).Result()
	if err == nil {
		var ids []int64
		if err := json.Unmarshal([]byte(raw), &ids); err == nil {
			return ids, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn().Err(err).Msg("Practicable id cache read failed")
	}

	ids, err := r.inner.ListPracticableIDs(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(ids); err == nil {
		if err := r.rdb.Set(ctx, key, raw, config.TaskCacheTTL).Err(); err != nil {
			r.log.Warn().Err(err).Msg("Practicable id cache write failed")
		}
	}

	return ids, nil
}

func (e *taskCacheEntry) toModel() *model.Task {
	return &model.Task{
		ID:                   e.ID,
		Description:          e.Description,
		TestData:             e.TestData,
		ExpectedOutput:       e.ExpectedOutput,
		HiddenTestData:       e.HiddenTestData,
		HiddenExpectedOutput: e.HiddenExpectedOutput,
		PointValue:           e.PointValue,
		Practicable:          e.Practicable,
	}
}

func fromModel(t *model.Task) *taskCacheEntry {
	return &taskCacheEntry{
		ID:                   t.ID,
		Description:          t.Description,
		TestData:             t.TestData,
		ExpectedOutput:       t.ExpectedOutput,
		HiddenTestData:       t.HiddenTestData,
		HiddenExpectedOutput: t.HiddenExpectedOutput,
		PointValue:           t.PointValue,
		Practicable:          t.Practicable,
	}
}
