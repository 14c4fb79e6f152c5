package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/raywall/fast-crud-service/easyrepo"
	"github.com/raywall/fast-crud-service/models"
	"github.com/raywall/fast-crud-service/pkg/config"
	"github.com/raywall/fast-crud-service/pkg/metrics"
	"github.com/raywall/fast-crud-service/pkg/ratelimit"
	"github.com/raywall/fast-crud-service/pkg/resource"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Name:            "test",
		Env:             "test",
		Runtime:         config.RuntimeLocal,
		Port:            3000,
		IDPolicy:        "max",
		ShutdownTimeout: time.Second,
		RateLimit:       config.RateLimitConf{Burst: 10, KeyHeader: "X-API-Key"},
	}
}

func testDeps(cfg *config.AppConfig, mp metrics.Provider) Deps {
	usuarios := easyrepo.NewService[models.Usuario](
		easyrepo.NewMemoryRepository[models.Usuario](easyrepo.NextIDMax, models.SeedUsuarios()...))
	consolas := easyrepo.NewService[models.Consola](
		easyrepo.NewMemoryRepository[models.Consola](easyrepo.NextIDMax, models.SeedConsolas()...))

	return Deps{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Metrics: mp,
		Resources: []Mount{
			{Base: "/api/usuarios", Handler: resource.NewHandler[models.Usuario](usuarios, resource.Options{
				Name: "usuarios", NotFound: "El usuario %s no se encuentra!",
				NotFoundOnWrite: "El usuario no se encuentra", Metrics: mp,
			})},
			{Base: "/api/consolas", Handler: resource.NewHandler[models.Consola](consolas, resource.Options{
				Name: "consolas", NotFound: "La consola %s no se encuentra!",
				NotFoundOnWrite: "La consola no se encuentra", Metrics: mp,
			})},
		},
	}
}

func request(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestNewRouter_Scenarios(t *testing.T) {
	h := NewRouter(context.Background(), testDeps(testConfig(), metrics.NewMemoryProvider()))

	t.Run("initial list has four usuarios", func(t *testing.T) {
		rr := request(h, http.MethodGet, "/api/usuarios", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var list []models.Usuario
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		require.Len(t, list, 4)
		assert.Equal(t, 1, list[0].ID)
		assert.Equal(t, 4, list[3].ID)
	})

	t.Run("create Ana", func(t *testing.T) {
		rr := request(h, http.MethodPost, "/api/usuarios", `{"name":"Ana"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"id":5,"nombre":"Ana"}`, rr.Body.String())
	})

	t.Run("short name", func(t *testing.T) {
		rr := request(h, http.MethodPost, "/api/usuarios", `{"name":"Al"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "at least 3 characters")
	})

	t.Run("put unknown id", func(t *testing.T) {
		rr := request(h, http.MethodPut, "/api/usuarios/99", `{"nombre":"Nadie"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "El usuario no se encuentra", rr.Body.String())
	})

	t.Run("delete Dora", func(t *testing.T) {
		rr := request(h, http.MethodDelete, "/api/usuarios/2", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"id":2,"nombre":"Dora"}`, rr.Body.String())

		rr = request(h, http.MethodGet, "/api/usuarios", "")
		assert.NotContains(t, rr.Body.String(), `"id":2,`)
	})

	t.Run("consolas are independent", func(t *testing.T) {
		rr := request(h, http.MethodGet, "/api/consolas/2", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"id":2,"nombre":"PS5"}`, rr.Body.String())

		rr = request(h, http.MethodGet, "/api/consolas/7", "")
		assert.Equal(t, "La consola 7 no se encuentra!", rr.Body.String())
	})
}

func TestNewRouter_ExtraRoutes(t *testing.T) {
	h := NewRouter(context.Background(), testDeps(testConfig(), nil))

	rr := request(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Hola mundo")

	rr = request(h, http.MethodGet, "/api/productos", "")
	assert.JSONEq(t, `["Mouse","Teclado","Bocinas"]`, rr.Body.String())

	rr = request(h, http.MethodGet, "/api/usuarios/2002/2?nombre=xxxx&single=y", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"nombre":"xxxx","single":"y"}`, rr.Body.String())
}

func TestNewRouter_Observability(t *testing.T) {
	mp := metrics.NewMemoryProvider()
	h := NewRouter(context.Background(), testDeps(testConfig(), mp))

	t.Run("generates correlation id", func(t *testing.T) {
		rr := request(h, http.MethodGet, "/api/usuarios/1", "")
		assert.NotEmpty(t, rr.Header().Get(HeaderCorrelationID))
		assert.NotEmpty(t, rr.Header().Get(HeaderLatency))
	})

	t.Run("propagates correlation id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/usuarios", nil)
		req.Header.Set(HeaderCorrelationID, "abc-123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, "abc-123", rr.Header().Get(HeaderCorrelationID))
	})

	t.Run("metrics tagged with route template", func(t *testing.T) {
		request(h, http.MethodGet, "/api/consolas/99", "")

		last, ok := mp.Last(metrics.RequestCount)
		require.True(t, ok)
		assert.Contains(t, last.Tags, "route:/api/consolas/{id}")
		assert.Contains(t, last.Tags, "status:404")

		_, ok = mp.Last(metrics.RequestLatency)
		assert.True(t, ok)
	})

	t.Run("requests without a route are counted", func(t *testing.T) {
		rr := request(h, http.MethodGet, "/nada/aqui", "")
		require.Equal(t, http.StatusNotFound, rr.Code)
		last, ok := mp.Last(metrics.RequestCount)
		require.True(t, ok)
		assert.Contains(t, last.Tags, "status:404")
		assert.Contains(t, last.Tags, "route:unmatched")

		rr = request(h, http.MethodPatch, "/api/productos", "")
		require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		last, ok = mp.Last(metrics.RequestCount)
		require.True(t, ok)
		assert.Contains(t, last.Tags, "status:405")
		assert.Contains(t, last.Tags, "method:PATCH")
	})
}

func TestObservabilityMiddleware_ContextValue(t *testing.T) {
	var seen string
	h := ObservabilityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "corr-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "corr-1", seen)
}

func TestNewRouter_DevelopmentAccessLog(t *testing.T) {
	cfg := testConfig()
	cfg.Env = config.EnvDevelopment

	var buf bytes.Buffer
	deps := testDeps(cfg, nil)
	deps.AccessLog = &buf

	request(NewRouter(context.Background(), deps), http.MethodGet, "/api/consolas", "")
	assert.Contains(t, buf.String(), "GET /api/consolas")
}

func TestNewRouter_RateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig()
	cfg.RateLimit.RPS = 0.001
	cfg.RateLimit.Burst = 1
	h := NewRouter(ctx, testDeps(cfg, nil))

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/api/usuarios", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(h, http.MethodGet, "/api/usuarios", "").Code)
}

func TestNewLimiter_Backend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := config.RateLimitConf{RPS: 5, Burst: 10}

	t.Run("memory by default", func(t *testing.T) {
		_, ok := newLimiter(ctx, rl, zerolog.Nop()).(*ratelimit.Store)
		assert.True(t, ok)
	})

	t.Run("redis when addr is set", func(t *testing.T) {
		rl := rl
		rl.RedisAddr = "127.0.0.1:6379"
		rl.RedisPrefix = "crud:ratelimit"

		lim, ok := newLimiter(ctx, rl, zerolog.Nop()).(*ratelimit.RedisLimiter)
		require.True(t, ok)
		assert.Equal(t, 5.0, lim.RPS())
		assert.Equal(t, 10, lim.Burst())
	})
}

type panicRegistrar struct{}

func (panicRegistrar) Register(r *mux.Router, base string) {
	r.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

func TestNewRouter_Recovery(t *testing.T) {
	deps := testDeps(testConfig(), nil)
	deps.Resources = append(deps.Resources, Mount{Base: "/panic", Handler: panicRegistrar{}})

	rr := request(NewRouter(context.Background(), deps), http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestNewRouter_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("archivo estatico"), 0o600))

	cfg := testConfig()
	cfg.StaticDir = dir
	h := NewRouter(context.Background(), testDeps(cfg, nil))

	rr := request(h, http.MethodGet, "/readme.txt", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "archivo estatico", rr.Body.String())

	// rotas da API continuam com prioridade
	rr = request(h, http.MethodGet, "/api/consolas/1", "")
	assert.JSONEq(t, `{"id":1,"nombre":"XBOX"}`, rr.Body.String())
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, ln, NewRouter(ctx, testDeps(testConfig(), nil)), time.Second)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/consolas")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("servidor não encerrou")
	}
}
