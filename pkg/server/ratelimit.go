package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matst80/slask-parts/pkg/common"
	"github.com/matst80/slask-parts/pkg/errx"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/redis/go-redis/v9"
)

type RateLimit struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key in fixed windows. Allow returns errx.ErrRateLimited
// once the limit is passed.
type Limiter interface {
	Allow(ctx context.Context, key string) (RateLimit, error)
}

type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (RateLimit, error) {
	resetKey := key + ":resetAt"
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return RateLimit{}, errx.WrapRedis(err)
	}
	if count == 1 {
		resetAt := time.Now().Add(l.window)
		pipe := l.client.TxPipeline()
		pipe.Expire(ctx, key, l.window)
		pipe.Set(ctx, resetKey, resetAt.Unix(), l.window)
		if _, err = pipe.Exec(ctx); err != nil {
			return RateLimit{}, errx.WrapRedis(err)
		}
	}
	resetAtUnix, _ := l.client.Get(ctx, resetKey).Int64()
	return makeRateLimit(l.limit, int(count), time.Unix(resetAtUnix, 0))
}

func makeRateLimit(limit, count int, resetAt time.Time) (RateLimit, error) {
	rate := RateLimit{Limit: limit, Remaining: max(limit-count, 0), ResetAt: resetAt}
	if count > limit {
		return rate, errx.ErrRateLimited
	}
	return rate, nil
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps one window per key. Finished windows are swept at most once per
// window length and MaxKeys caps the map.
type MemoryLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	windows   map[string]*memoryWindow
	nextSweep time.Time
	MaxKeys   int
	now       func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*memoryWindow),
		MaxKeys: defaultMaxEntries,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (RateLimit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if !now.Before(l.nextSweep) {
		l.sweep(now)
	}
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		if !ok && l.MaxKeys > 0 && len(l.windows) >= l.MaxKeys {
			l.sweep(now)
			evict(l.windows, len(l.windows)-l.MaxKeys+1)
		}
		w = &memoryWindow{resetAt: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++
	return makeRateLimit(l.limit, w.count, w.resetAt)
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(l.window)
}

func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// TrustedProxies lists the networks allowed to set X-Forwarded-For. Requests from any
// other address are keyed on the connection address.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies accepts CIDRs and plain addresses.
func ParseTrustedProxies(values []string) (TrustedProxies, error) {
	ret := make(TrustedProxies, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			prefix, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
			}
			ret = append(ret, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
		}
		ret = append(ret, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return ret, nil
}

func (t TrustedProxies) trusts(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range t {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP walks X-Forwarded-For from the right while the hops are trusted proxies and
// returns the first untrusted address.
func (t TrustedProxies) ClientIP(r *http.Request) string {
	remote := remoteAddr(r)
	addr, err := netip.ParseAddr(remote)
	if err != nil || !t.trusts(addr) {
		return remote
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			return remote
		}
		if !t.trusts(hop) {
			return hop.Unmap().String()
		}
	}
	return remote
}

// RateLimited keys requests on client ip, method and name. Limiter failures let the
// request through.
func RateLimited(l Limiter, proxies TrustedProxies, name string, next http.HandlerFunc) http.HandlerFunc {
	if l == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next(w, r)
			return
		}
		key := "rl:" + proxies.ClientIP(r) + ":" + r.Method + ":" + name
		rate, err := l.Allow(r.Context(), key)
		if rate.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rate.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rate.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(rate.ResetAt.Unix(), 10))
		}
		if err != nil {
			if errx.StatusOf(err) == http.StatusTooManyRequests {
				rateLimited.Inc()
				common.WriteError(w, err)
				return
			}
			logx.Warn().Err(err).Str("key", key).Msg("rate limiter failed")
		}
		next(w, r)
	}
}
