package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"lecture-summary/internal/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(context.Background(), &config.RedisConfig{URL: mr.Addr()})
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
