package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "Tracker/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyOwnerList = "tasks:owner:"

// TaskCache caches per-owner task lists in Redis. It never holds grants or
// single tasks, so authorization always reads fresh data.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list for ownerID, or nil on a miss.
func (c *TaskCache) GetList(ctx context.Context, ownerID int64) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, ownerKey(ownerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Task{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list for ownerID.
func (c *TaskCache) SetList(ctx context.Context, ownerID int64, list []dom.Task) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, ownerKey(ownerID), b, c.ttl).Err()
}

// Invalidate drops the cached list for ownerID.
func (c *TaskCache) Invalidate(ctx context.Context, ownerID int64) error {
	return c.rdb.Del(ctx, ownerKey(ownerID)).Err()
}

func ownerKey(ownerID int64) string {
	return keyOwnerList + strconv.FormatInt(ownerID, 10)
}
