package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// luaWindowHit bumps the counter and arms the expiry in one round trip, so a
// counter can never be left without a TTL.
var luaWindowHit = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`)

// RateLimiter counts hits per key in fixed windows.
type RateLimiter struct {
	cli    *redis.Client
	prefix string
}

func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{cli: client.cli, prefix: prefix}
}

// Allow records one hit for key and reports whether it is within limit for
// the current window.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := luaWindowHit.Run(ctx, r.cli, []string{r.prefix + key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(limit), nil
}

// SubmitKey scopes submission hits to one client address.
func SubmitKey(clientAddr string) string {
	return "rate_limit:submit:" + clientAddr
}
