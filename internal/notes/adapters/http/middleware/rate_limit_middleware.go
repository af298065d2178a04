package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gonotes/pkg/logger"
)

// Константы ограничения частоты.
const (
	LogRateLimited = "request rate limited"

	ErrMsgTooManyRequests = "Too many attempts, try again later"

	visitorTTL = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает частоту запросов с одного IP адреса.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

// NewRateLimiter создает ограничитель: limit запросов в секунду с запасом burst.
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
	}
}

// Allow сообщает, можно ли обслужить очередной запрос с адреса ip.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[ip]
	if !ok {
		rl.evictLocked(now)
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) evictLocked(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

// Handler возвращает промежуточное ПО, отвечающее 429 при превышении лимита.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if rl.Allow(c.IP()) {
			return c.Next()
		}

		requestCtx := RequestContext(c)
		logger.Log(requestCtx).Warn(requestCtx, LogRateLimited, zap.String("ip", c.IP()), zap.String("path", c.Path()))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": ErrMsgTooManyRequests})
	}
}
