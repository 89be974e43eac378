// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/ports/repository"
)

var _ repository.JobGuard = (*JobLock)(nil)

const KeyGenerationLock = "generation_lock"

// JobLock is a SET NX lock shared by every replica. The TTL bounds how long
// a crashed holder can block new jobs.
type JobLock struct {
	cli *redis.Client
	key string
	ttl time.Duration
	log *zerolog.Logger
}

func NewJobLock(c *Client, prefix string, ttl time.Duration, logger *zerolog.Logger) *JobLock {
	l := logger.With().Str("component", "JobLock").Logger()
	return &JobLock{cli: c.cli, key: prefix + KeyGenerationLock, ttl: ttl, log: &l}
}

// TryAcquire makes a single attempt; a held lock is reported immediately.
func (l *JobLock) TryAcquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.cli.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAlreadyInProgress
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.unlock(ctx, token); err != nil {
			l.log.Error().Err(err).Msg("release generation lock")
		}
	}, nil
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *JobLock) unlock(ctx context.Context, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{l.key}, token).Result()
	return err
}
