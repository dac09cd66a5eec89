package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// atomic INCR, expiry set only on the first hit of a window
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// WindowCount is the state of a fixed-window counter after one hit
type WindowCount struct {
	Count   int
	ResetIn time.Duration
}

// Hit increments the fixed-window counter stored under key
func Hit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (WindowCount, error) {
	raw, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return WindowCount{}, err
	}

	ttl, err := rdb.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = 0
	}
	return WindowCount{Count: toInt(raw), ResetIn: ttl}, nil
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
