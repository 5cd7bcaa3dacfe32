package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/utafrali/TravelGo/pkg/errors"
	"github.com/utafrali/TravelGo/pkg/httputil"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorStore holds one token bucket per client key and evicts idle ones.
type visitorStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

func newVisitorStore(rps float64, burst int, ttl time.Duration) *visitorStore {
	return &visitorStore{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *visitorStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = s.now()
	return v.limiter
}

func (s *visitorStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.ttl {
			delete(s.visitors, key)
		}
	}
}

func (s *visitorStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

func (s *visitorStore) cleanupLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-stop:
			return
		}
	}
}

// RateLimitConfig configures a RateLimiter. TrustedProxies lists the CIDRs
// of reverse proxies whose forwarding headers are believed; requests from
// anywhere else are keyed on their connection address.
type RateLimitConfig struct {
	RPS            float64
	Burst          int
	TrustedProxies []string
}

// RateLimiter enforces a token bucket per caller: the authenticated user when
// Authenticate ran first, the client IP otherwise. Rejected requests get 429.
// A nil limiter, or one built with a non-positive RPS, lets everything
// through.
type RateLimiter struct {
	store    *visitorStore
	trusted  []*net.IPNet
	logger   *slog.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter and its idle-bucket sweeper. Call Stop to
// end the sweeper.
func NewRateLimiter(cfg RateLimitConfig, logger *slog.Logger) *RateLimiter {
	l := &RateLimiter{
		trusted: parseCIDRs(cfg.TrustedProxies, logger),
		logger:  logger,
		stop:    make(chan struct{}),
	}
	if cfg.RPS <= 0 {
		return l
	}
	burst := max(cfg.Burst, 1)
	const idle = 3 * time.Minute
	l.store = newVisitorStore(cfg.RPS, burst, idle)
	go l.store.cleanupLoop(idle, l.stop)
	return l
}

// Stop ends the sweeper. It is safe to call more than once.
func (l *RateLimiter) Stop() {
	if l == nil {
		return
	}
	l.stopOnce.Do(func() { close(l.stop) })
}

// Handler is the middleware.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l == nil || l.store == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + clientIP(r, l.trusted)
		if userID := UserIDFromContext(r.Context()); userID != "" {
			key = "user:" + userID
		}

		if !l.store.get(key).Allow() {
			l.logger.WarnContext(r.Context(), "rate limit exceeded",
				slog.String("key", key),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			httputil.WriteError(w, r, apperrors.ErrRateLimited, l.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the connection address. Only when that address is a
// trusted proxy are forwarding headers consulted: X-Forwarded-For is walked
// from the right, skipping trusted hops, and X-Real-IP is the fallback.
func clientIP(r *http.Request, trusted []*net.IPNet) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !inNets(net.ParseIP(host), trusted) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			if !inNets(ip, trusted) {
				return ip.String()
			}
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return host
}

func inNets(ip net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
