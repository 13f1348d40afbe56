package router

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"hackathon/internal/cache"
	"hackathon/internal/metrics"
)

const (
	rateLimitPrefix     = "hackathon:ratelimit:"
	rateLimitTimeout    = 250 * time.Millisecond
	rateLimitSweepEvery = 5 * time.Minute
)

// windowStore is a fixed-window counter per client. Counters live in redis so
// every instance shares them; when redis is unreachable the in-process window
// takes over.
type windowStore struct {
	cache    *cache.Client
	fallback *memoryWindow
	limit    int64
	window   time.Duration
	log      *slog.Logger
}

func newWindowStore(c *cache.Client, limit int, window time.Duration, log *slog.Logger) *windowStore {
	if window <= 0 {
		window = time.Minute
	}
	return &windowStore{
		cache:    c,
		fallback: newMemoryWindow(),
		limit:    int64(limit),
		window:   window,
		log:      log,
	}
}

// Allow implements middleware.RateLimiterStore.
func (s *windowStore) Allow(identifier string) (bool, error) {
	if s.limit <= 0 {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), rateLimitTimeout)
	defer cancel()

	count, _, err := s.cache.IncrWindow(ctx, rateLimitPrefix+identifier, s.window)
	if err == nil {
		return count <= s.limit, nil
	}
	if !stderrors.Is(err, cache.ErrUnavailable) {
		s.log.Warn("redis rate limiter error, using in-memory window", "error", err)
	}
	return s.fallback.allow(identifier, s.limit, s.window, time.Now()), nil
}

type windowState struct {
	count int64
	end   time.Time
}

type memoryWindow struct {
	mu        sync.Mutex
	entries   map[string]windowState
	nextSweep time.Time
}

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{entries: make(map[string]windowState)}
}

func (w *memoryWindow) allow(key string, limit int64, window time.Duration, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.After(w.nextSweep) {
		for k, state := range w.entries {
			if now.After(state.end) {
				delete(w.entries, k)
			}
		}
		w.nextSweep = now.Add(rateLimitSweepEvery)
	}

	state, ok := w.entries[key]
	if !ok || now.After(state.end) {
		w.entries[key] = windowState{count: 1, end: now.Add(window)}
		return true
	}
	if state.count >= limit {
		return false
	}
	state.count++
	w.entries[key] = state
	return true
}

func rateLimiter(store middleware.RateLimiterStore, m *metrics.Metrics) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			m.RateLimited(c.Path())
			return echo.NewHTTPError(http.StatusTooManyRequests).SetInternal(err)
		},
	})
}
