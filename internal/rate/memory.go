package rate

import (
	"context"
	"math"
	"sync"
	"time"

	xrate "golang.org/x/time/rate"
)

type keyLimiter struct {
	limiter    *xrate.Limiter
	lastAccess time.Time
}

// MemoryLimiter es un token bucket por clave en proceso: Max requests por
// Window con ráfaga Max. Sirve para una sola réplica o para dev.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	mu       sync.Mutex
	limiters map[string]*keyLimiter
	now      func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:      int64(max),
		Window:   window,
		limiters: make(map[string]*keyLimiter),
		now:      time.Now,
	}
}

func (l *MemoryLimiter) every() xrate.Limit {
	return xrate.Limit(float64(l.Max) / l.Window.Seconds())
}

func (l *MemoryLimiter) get(key string, now time.Time) *xrate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.limiters[key]
	if !ok {
		kl = &keyLimiter{limiter: xrate.NewLimiter(l.every(), int(l.Max))}
		l.limiters[key] = kl
	}
	kl.lastAccess = now
	return kl.limiter
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := l.now()
	lim := l.get(key, now)

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	remaining := int64(math.Floor(tokens))
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: l.Max - remaining,
		WindowTTL:   l.Window,
	}
	if !allowed {
		// tiempo hasta que se repone un token
		missing := 1 - tokens
		res.RetryAfter = time.Duration(math.Ceil(missing/float64(l.every()))) * time.Second
		if res.RetryAfter < time.Second {
			res.RetryAfter = time.Second
		}
	}
	return res, nil
}

// Cleanup descarta claves sin actividad desde hace más de idle.
func (l *MemoryLimiter) Cleanup(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, kl := range l.limiters {
		if kl.lastAccess.Before(cutoff) {
			delete(l.limiters, k)
			n++
		}
	}
	return n
}

// StartJanitor corre Cleanup(idle) cada interval hasta que se llame a stop.
// stop es idempotente.
func (l *MemoryLimiter) StartJanitor(interval, idle time.Duration) (stop func()) {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup(idle)
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// Len devuelve la cantidad de claves activas.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
