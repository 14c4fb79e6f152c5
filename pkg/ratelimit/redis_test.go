package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis guarda os contadores em memória no lugar de um servidor Redis.
type fakeRedis struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	cmd := redis.NewIntCmd(ctx, "incr", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.counts[key]++
	cmd.SetVal(f.counts[key])
	return cmd
}

func (f *fakeRedis) PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	cmd := redis.NewBoolCmd(ctx, "pexpire", key, expiration.Milliseconds())
	f.ttls[key] = expiration
	cmd.SetVal(true)
	return cmd
}

func TestRedisLimiter_SharedAcrossInstances(t *testing.T) {
	rdb := newFakeRedis()
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	// dois processos (ex: duas instâncias da Lambda) apontando para o mesmo Redis
	a := NewRedisLimiter(rdb, 1, 2, WithRedisPrefix("crud:rl:"))
	b := NewRedisLimiter(rdb, 1, 2, WithRedisPrefix("crud:rl"))
	a.now, b.now = clock, clock

	ctx := context.Background()

	ok, _, err := a.Allow(ctx, "cliente")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = b.Allow(ctx, "cliente")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, retry, err := a.Allow(ctx, "cliente")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, 2*time.Second)

	// outra chave tem contador próprio
	ok, _, err = b.Allow(ctx, "outro")
	require.NoError(t, err)
	assert.True(t, ok)

	// a expiração é definida uma vez por contador, com o dobro da janela
	require.Len(t, rdb.ttls, 2)
	for key, ttl := range rdb.ttls {
		assert.Contains(t, key, "crud:rl:")
		assert.Equal(t, 4*time.Second, ttl)
	}

	// próxima janela
	now = now.Add(2 * time.Second)
	ok, _, err = a.Allow(ctx, "cliente")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMiddleware_RedisBackend(t *testing.T) {
	rdb := newFakeRedis()
	limiter := NewRedisLimiter(rdb, 1, 1)
	fixed := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return fixed }
	h := Middleware(Options{Limiter: limiter, KeyHeader: "X-API-Key"})(okHandler())

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/api/consolas", nil)
		r.Header.Set("X-API-Key", "k")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		return rr
	}

	assert.Equal(t, http.StatusOK, send().Code)
	rr := send()
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	t.Run("redis unavailable lets requests through", func(t *testing.T) {
		rdb.err = errors.New("connection refused")
		assert.Equal(t, http.StatusOK, send().Code)
	})
}
