package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	EventsListPrefix = "cache:events:list:"
	EventsItemPrefix = "cache:events:item:"
)

type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

// PurgeEventsList drops every cached list page, whatever its query string.
func (ci *CacheInvalidator) PurgeEventsList(ctx context.Context) {
	iter := ci.rdb.Scan(ctx, 0, EventsListPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}

func (ci *CacheInvalidator) PurgeEventItem(ctx context.Context, id string) {
	_ = ci.rdb.Del(ctx, EventsItemPrefix+id).Err()
}
