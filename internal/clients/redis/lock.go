package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/opencourts/offence-registry-backend/internal/platform/logger"
)

// JobLock hands out short-lived leases so that only one instance runs a
// scheduled job at a time. The lease is held as a token value under the job
// key; release only deletes the key when the token still matches, so an
// expired lease can never release a successor's lock.
type JobLock interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error)
	Close() error
}

type jobLock struct {
	log *logger.Logger
	rdb *goredis.Client
}

var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0
`)

func NewJobLock(log *logger.Logger) (JobLock, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &jobLock{
		log: log.With("client", "RedisJobLock"),
		rdb: rdb,
	}, nil
}

func (l *jobLock) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	if l == nil || l.rdb == nil {
		return nil, false, fmt.Errorf("job lock not initialized")
	}
	if strings.TrimSpace(name) == "" {
		return nil, false, fmt.Errorf("lock name required")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	key := "job-lock:" + name
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			l.log.Warn("failed to release job lock", "key", key, "error", err)
		}
	}
	return release, true, nil
}

func (l *jobLock) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
