package config

import (
	"fmt"
	"time"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TaskKey returns the cache key for a task record.
func (r *CacheKeyStruct) TaskKey(taskID int64) string {
	return fmt.Sprintf("task:%d", taskID)
}

// PracticableTaskIDsKey returns the cache key for the practicable task id list.
func (r *CacheKeyStruct) PracticableTaskIDsKey() string {
	return "tasks:practicable_ids"
}

// TaskCacheTTL bounds staleness of cached task records. Task edits go
// through the corpus, not this service, so a short TTL is the only
// invalidation.
const TaskCacheTTL = 5 * time.Minute

var CacheKey = NewCacheKeyStruct()
