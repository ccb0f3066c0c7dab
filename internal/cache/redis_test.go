package cache

import (
	"context"
	"testing"

	"github.com/orientis/orientis/internal/search"
)

var _ search.Cache = (*RedisCache)(nil)

func TestNewRedisCacheInvalidURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url"); err == nil {
		t.Error("expected error for malformed redis URL")
	}
}
