package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenBucket 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64 // 每秒填充的令牌数
	capacity   int
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket 创建一个装满令牌的桶。
func NewTokenBucket(rate float64, capacity int, now time.Time) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: now,
	}
}

// Allow 尝试获取一个令牌。
func (tb *TokenBucket) Allow(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.tokens += elapsed * tb.rate
		tb.lastRefill = now
	}
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

func (tb *TokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill
}

// IPRateLimiter 为每个客户端 IP 维护一个令牌桶，空闲超过 expiry 的桶在 Sweep 时被清理。
type IPRateLimiter struct {
	rate    float64
	burst   int
	expiry  time.Duration
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

// NewIPRateLimiter 创建限流器，rate/burst 非正数时回退到 1/5。
func NewIPRateLimiter(rate float64, burst int) *IPRateLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &IPRateLimiter{
		rate:    rate,
		burst:   burst,
		expiry:  time.Hour,
		now:     time.Now,
		buckets: make(map[string]*TokenBucket),
	}
}

// Allow reports whether key may proceed.
func (l *IPRateLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = NewTokenBucket(l.rate, l.burst, now)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()
	return bucket.Allow(now)
}

// Sweep 删除空闲过久的桶，返回删除数量。
func (l *IPRateLimiter) Sweep() int {
	cutoff := l.now().Add(-l.expiry)
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, bucket := range l.buckets {
		if bucket.idleSince().Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit 按 c.ClientIP() 限流；超限时调用 onLimit，onLimit 为空则返回 429。
func RateLimit(limiter *IPRateLimiter, onLimit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		if onLimit != nil {
			onLimit(c)
		} else {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": http.StatusText(http.StatusTooManyRequests)})
		}
		c.Abort()
	}
}
