package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/raywall/fast-crud-service/pkg/config"
	"github.com/raywall/fast-crud-service/pkg/metrics"
	"github.com/raywall/fast-crud-service/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Registrar é implementado pelos handlers de coleção (resource.Handler).
type Registrar interface {
	Register(r *mux.Router, base string)
}

// Mount associa uma coleção ao caminho base onde ela é servida.
type Mount struct {
	Base    string
	Handler Registrar
}

// Deps reúne tudo que o roteador precisa. Config, Logger e Metrics são obrigatórios.
type Deps struct {
	Config    *config.AppConfig
	Logger    zerolog.Logger
	Metrics   metrics.Provider
	Resources []Mount
	// AccessLog recebe o log de acesso em desenvolvimento (default: os.Stdout).
	AccessLog io.Writer
}

// NewRouter monta o roteador e a cadeia de middlewares:
// recovery -> observabilidade -> access log (dev) -> rate limit -> rotas.
// ctx controla a vida das goroutines auxiliares (janitor do rate limit).
func NewRouter(ctx context.Context, deps Deps) http.Handler {
	router := mux.NewRouter()
	withMetrics := MetricsMiddleware(deps.Metrics)
	router.Use(withMetrics)
	router.NotFoundHandler = withMetrics(http.NotFoundHandler())
	router.MethodNotAllowedHandler = withMetrics(http.HandlerFunc(methodNotAllowed))

	router.HandleFunc("/", greeting).Methods(http.MethodGet)
	router.HandleFunc("/api/productos", productos).Methods(http.MethodGet)
	router.HandleFunc("/api/usuarios/{year}/{month}", queryEcho).Methods(http.MethodGet)

	for _, m := range deps.Resources {
		deps.Logger.Info().Msgf("Registrando coleção em %s", m.Base)
		m.Handler.Register(router, m.Base)
	}

	if dir := deps.Config.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			deps.Logger.Info().Msgf("Servindo arquivos estáticos de %s", dir)
			router.PathPrefix("/").Handler(http.FileServer(http.Dir(dir))).Methods(http.MethodGet, http.MethodHead)
		}
	}

	var handler http.Handler = router

	if rl := deps.Config.RateLimit; rl.Enabled() {
		handler = ratelimit.Middleware(ratelimit.Options{
			Limiter:            newLimiter(ctx, rl, deps.Logger),
			KeyHeader:          rl.KeyHeader,
			TrustXForwardedFor: rl.TrustXFF,
			Metrics:            deps.Metrics,
		})(handler)
	}

	if deps.Config.IsDevelopment() {
		out := deps.AccessLog
		if out == nil {
			out = os.Stdout
		}
		deps.Logger.Debug().Str("component", "app:inicio").Msg("Access log habilitado")
		handler = handlers.LoggingHandler(out, handler)
	}

	handler = ObservabilityMiddleware(handler)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{deps.Logger}),
		handlers.PrintRecoveryStack(deps.Config.IsDevelopment()),
	)(handler)
}

// newLimiter usa o Redis quando configurado, para que o limite valha entre
// instâncias, e um token bucket em memória caso contrário. O cliente Redis e o
// janitor vivem até ctx ser cancelado.
func newLimiter(ctx context.Context, rl config.RateLimitConf, logger zerolog.Logger) ratelimit.Limiter {
	if rl.RedisAddr == "" {
		store := ratelimit.NewStore(rl.RPS, rl.Burst)
		store.StartJanitor(ctx)
		return store
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     rl.RedisAddr,
		Password: rl.RedisPassword,
	})
	go func() {
		<-ctx.Done()
		_ = rdb.Close()
	}()

	logger.Info().Str("addr", rl.RedisAddr).Msg("Rate limit compartilhado via Redis")
	return ratelimit.NewRedisLimiter(rdb, rl.RPS, rl.Burst, ratelimit.WithRedisPrefix(rl.RedisPrefix))
}

// StartHTTPServer escuta em :Port até ctx ser cancelado e então faz o shutdown gracioso.
func StartHTTPServer(ctx context.Context, cfg *config.AppConfig, handler http.Handler) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("falha ao escutar em %s: %w", addr, err)
	}

	log.Info().Msgf("Escuchando en el puerto %d...", cfg.Port)
	return serve(ctx, ln, handler, cfg.ShutdownTimeout)
}

func serve(ctx context.Context, ln net.Listener, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("Encerrando servidor HTTP")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// recoveryLogger adapta o zerolog ao handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
