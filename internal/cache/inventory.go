package cache

import (
	"context"
	"fmt"
	"time"

	"lovediary/internal/observability"
)

const (
	EntryKeyPrefix = "entry:%d"
)

const (
	EntryTTL = 5 * time.Minute
)

func EntryKey(entryID uint) string {
	return fmt.Sprintf(EntryKeyPrefix, entryID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		if err := client.Del(ctx, key).Err(); err != nil {
			observability.RecordRedisError("del")
		}
	}
}

func InvalidateEntry(ctx context.Context, entryID uint) {
	Invalidate(ctx, EntryKey(entryID))
}
