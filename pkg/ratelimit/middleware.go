package ratelimit

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/raywall/fast-crud-service/pkg/metrics"
	"github.com/rs/zerolog/log"
)

type KeyFunc func(r *http.Request) string

// Limiter decide se mais uma requisição da chave cabe no limite. Quando não
// cabe, retry é a espera sugerida para o Retry-After.
type Limiter interface {
	Allow(ctx context.Context, key string) (ok bool, retry time.Duration, err error)
	RPS() float64
	Burst() int
}

type Options struct {
	Limiter            Limiter
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool
	RejectStatus       int
	Metrics            metrics.Provider
}

// DefaultKeyFunc identifica o cliente pelo header configurado, depois pelo
// primeiro IP do X-Forwarded-For (se confiável) e por fim pelo RemoteAddr.
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// Middleware rejeita com 429 (e Retry-After) as requisições acima do limite.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(opts.Limiter.RPS(), 'f', -1, 64))
			w.Header().Set("X-RateLimit-Burst", strconv.Itoa(opts.Limiter.Burst()))

			ok, retry, err := opts.Limiter.Allow(r.Context(), key)
			if err != nil {
				// backend indisponível: a requisição segue
				log.Ctx(r.Context()).Error().Err(err).Str("key", key).Msg("falha ao consultar rate limit")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				reject(w, r, opts, key, retry)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, opts Options, key string, retry time.Duration) {
	if opts.Metrics != nil {
		_ = opts.Metrics.Count(metrics.RateLimited, 1, []string{"method:" + r.Method})
	}
	log.Ctx(r.Context()).Warn().Str("key", key).Dur("retry_after", retry).Msg("rate limit excedido")

	seconds := int(math.Ceil(retry.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
}
