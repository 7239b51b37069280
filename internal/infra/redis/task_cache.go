package redis

import (
	"context"
	"encoding/json"
	"time"

	"video-subtitle-translator/internal/domain/model"
)

// TaskCache fronts the task repository for the poll surface. The pipeline
// invalidates or refreshes the entry after every status write, so pollers
// rarely hit Postgres.
type TaskCache struct {
	client *Client
	ttl    time.Duration
}

func NewTaskCache(client *Client, ttl time.Duration) *TaskCache {
	return &TaskCache{client: client, ttl: ttl}
}

func key(id string) string { return "task:" + id }

func (c *TaskCache) Get(ctx context.Context, id string) (*model.Task, bool) {
	raw, err := c.client.Get(ctx, key(id))
	if err != nil {
		// redis.Nil and transport errors are both a miss
		return nil, false
	}
	var t model.Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		_ = c.client.Del(ctx, key(id))
		return nil, false
	}
	return &t, true
}

func (c *TaskCache) Put(ctx context.Context, t *model.Task) {
	if t.IsZero() {
		return
	}
	b, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key(t.ID), string(b), c.ttl)
}

func (c *TaskCache) Invalidate(ctx context.Context, id string) {
	_ = c.client.Del(ctx, key(id))
}