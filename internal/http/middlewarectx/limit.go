package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/tutoring-platform/internal/http/response"
)

// idleTTL через сколько удаляется лимитер клиента без запросов.
const idleTTL = 30 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter token bucket на каждый адрес клиента: requests запросов за window.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	swept   time.Time
	now     func() time.Time
}

// NewLimiter создаёт лимитер.
func NewLimiter(requests int, window time.Duration) *Limiter {
	if requests <= 0 {
		requests = 1
	}
	return &Limiter{
		clients: make(map[string]*client),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		swept:   time.Now(),
		now:     time.Now,
	}
}

// Allow расходует один токен клиента key.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	allowed := c.limiter.AllowN(now, 1)

	if now.Sub(l.swept) > idleTTL {
		for k, other := range l.clients {
			if now.Sub(other.lastSeen) > idleTTL {
				delete(l.clients, k)
			}
		}
		l.swept = now
	}
	return allowed
}

// RateLimitMiddleware отвечает 429, если клиент исчерпал лимит. Адрес клиента
// берётся из RemoteAddr, поэтому middleware.RealIP должен стоять раньше.
func RateLimitMiddleware(log *slog.Logger, limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiter.Allow(key) {
				log.Warn("too many requests", slog.String("client", key), slog.String("path", r.URL.Path))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
