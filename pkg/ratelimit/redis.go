package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter é o subconjunto do cliente Redis usado pelo RedisLimiter.
// *redis.Client o satisfaz.
type RedisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter conta requisições por chave em janelas fixas no Redis, então
// o limite vale para todas as instâncias que compartilham o servidor (ex:
// execuções concorrentes da Lambda). Cada janela dura burst/rps e aceita
// até burst requisições, o que mantém a taxa média em rps.
type RedisLimiter struct {
	rdb    RedisCounter
	prefix string
	rps    float64
	burst  int
	window time.Duration
	now    func() time.Time
}

type RedisOption func(*RedisLimiter)

func WithRedisPrefix(prefix string) RedisOption {
	return func(l *RedisLimiter) {
		if p := strings.Trim(prefix, ":"); p != "" {
			l.prefix = p
		}
	}
}

func NewRedisLimiter(rdb RedisCounter, rps float64, burst int, opts ...RedisOption) *RedisLimiter {
	l := &RedisLimiter{
		rdb:    rdb,
		prefix: "ratelimit",
		rps:    rps,
		burst:  burst,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.window = time.Duration(float64(burst) / rps * float64(time.Second))
	if l.window < time.Millisecond {
		l.window = time.Millisecond
	}
	return l
}

func (l *RedisLimiter) RPS() float64 { return l.rps }
func (l *RedisLimiter) Burst() int   { return l.burst }

// Allow incrementa o contador da janela atual da chave. A primeira requisição
// da janela define a expiração do contador.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	slot := now.UnixNano() / int64(l.window)
	counterKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	count, err := l.rdb.Incr(ctx, counterKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis incr %s: %w", counterKey, err)
	}
	if count == 1 {
		if err := l.rdb.PExpire(ctx, counterKey, 2*l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("redis pexpire %s: %w", counterKey, err)
		}
	}

	if count > int64(l.burst) {
		windowEnd := time.Unix(0, (slot+1)*int64(l.window))
		return false, windowEnd.Sub(now), nil
	}
	return true, 0, nil
}
