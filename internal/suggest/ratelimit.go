package suggest

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

type ipRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
}

func newIPRateLimiter(r rate.Limit, burst int) *ipRateLimiter {
	return &ipRateLimiter{rate: r, burst: burst}
}

func (i *ipRateLimiter) limiter(ip string) *rate.Limiter {
	limiter, _ := i.limiters.LoadOrStore(ip, rate.NewLimiter(i.rate, i.burst))
	return limiter.(*rate.Limiter)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Service) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.limiter(ip).Allow() {
			s.Logger.Warnw("rate limit exceeded", "client_ip", ip, "path", r.URL.Path)
			s.writeError(w, CodeError{code: http.StatusTooManyRequests, msg: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
