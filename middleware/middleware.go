package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"vaultd/logs"
)

// ipWindow 某个 IP 在当前时间窗口内的请求计数
type ipWindow struct {
	count int
	reset time.Time
}

// RateLimiter 按客户端 IP 的固定窗口限流。
// IP 记录放在 LRU 里，不活跃的 IP 自然被淘汰，不需要后台清理协程。
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	ips    *lru.Cache
	now    func() time.Time
}

// NewRateLimiter limit<=0 时不限流
func NewRateLimiter(limit int, window time.Duration, maxIPs int) (*RateLimiter, error) {
	if maxIPs <= 0 {
		maxIPs = 10000
	}
	ips, err := lru.New(maxIPs)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{limit: limit, window: window, ips: ips, now: time.Now}, nil
}

// Allow 记一次请求，超过阈值返回 false
func (l *RateLimiter) Allow(ip string) bool {
	if l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.ips.Get(ip)
	st, _ := w.(*ipWindow)
	if !ok || now.Sub(st.reset) > l.window {
		st = &ipWindow{reset: now}
		l.ips.Add(ip, st)
	}
	st.count++
	return st.count <= l.limit
}

// RateLimit 超过阈值返回 429 Too Many Requests
func (l *RateLimiter) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder 记下响应码供日志使用
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests 每个请求一行 debug 日志
func LogRequests(logger logs.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("%s %s %d %s %s", r.Method, r.URL.Path, rec.status, clientIP(r), time.Since(start).Truncate(time.Microsecond))
	})
}
