package carbon

import (
	"strconv"
	"sync"
	"time"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	"github.com/labstack/echo/v4"
)

// ConvertRateLimiter ограничивает число конвертаций с одного IP за скользящее окно.
type ConvertRateLimiter struct {
	// IP -> время принятых запросов
	requests map[string][]time.Time
	mu       sync.Mutex

	limit  int
	window time.Duration
	now    func() time.Time

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewConvertRateLimiter создает ограничитель на limit запросов за window и запускает фоновую очистку.
func NewConvertRateLimiter(limit int, window time.Duration) *ConvertRateLimiter {
	rl := &ConvertRateLimiter{
		requests:    make(map[string][]time.Time),
		limit:       limit,
		window:      window,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// Allow учитывает запрос с ip. Возвращает false, если лимит окна исчерпан; такой запрос не учитывается.
func (rl *ConvertRateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := recentSince(rl.requests[ip], now.Add(-rl.window))
	if len(valid) >= rl.limit {
		rl.requests[ip] = valid
		return false
	}
	rl.requests[ip] = append(valid, now)
	return true
}

// Middleware отклоняет запросы сверх лимита с ErrTooManyRequests.
func (rl *ConvertRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", retryAfter(rl.window))
				return EErrorDefined(c, apierrors.ErrTooManyRequests)
			}
			return next(c)
		}
	}
}

func (rl *ConvertRateLimiter) startCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup удаляет IP без запросов за последние 2*window.
func (rl *ConvertRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for ip, times := range rl.requests {
		valid := recentSince(times, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, ip)
			continue
		}
		rl.requests[ip] = valid
	}
}

// Stop останавливает фоновую очистку. Повторный вызов безопасен.
func (rl *ConvertRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func recentSince(times []time.Time, cutoff time.Time) []time.Time {
	var res []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			res = append(res, t)
		}
	}
	return res
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
