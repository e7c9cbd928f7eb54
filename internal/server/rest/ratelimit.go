package rest

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/server/auth"
)

// Profile describes a fixed-window rate limit.
type Profile struct {
	Window  time.Duration
	Limit   int
	Message string
	// SkipSuccessful stops responses with status below 400 from counting.
	SkipSuccessful bool
}

var (
	GeneralProfile = Profile{
		Window:  time.Minute,
		Limit:   15,
		Message: "Too many requests from this IP, please try again later.",
	}
	AuthProfile = Profile{
		Window:         15 * time.Minute,
		Limit:          5,
		Message:        "Too many attempts, please try again later.",
		SkipSuccessful: true,
	}
	PasswordResetProfile = Profile{
		Window:  time.Hour,
		Limit:   3,
		Message: "Too many password reset attempts, please try again later.",
	}
	StrictProfile = Profile{
		Window:  time.Hour,
		Limit:   10,
		Message: "Too many requests to sensitive endpoints, please try again later.",
	}
	DataOperationsProfile = Profile{
		Window:  15 * time.Minute,
		Limit:   100,
		Message: "Too many data operations, please slow down your requests.",
	}
)

// KeyFunc maps a request to a rate limit key. skip exempts the request.
type KeyFunc func(r *http.Request) (key string, skip bool)

// KeyByIP keys requests by client address.
func KeyByIP(r *http.Request) (string, bool) {
	return "ip:" + clientIP(r), false
}

// KeyByUser keys authenticated requests by user id and exempts admins.
// Anonymous requests fall back to the client address.
func KeyByUser(r *http.Request) (string, bool) {
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		if p.IsAdmin {
			return "", true
		}
		return "user:" + p.UserID, false
	}
	return KeyByIP(r)
}

type window struct {
	start time.Time
	count int
}

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	profile Profile
	key     KeyFunc
	now     func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func NewLimiter(p Profile, key KeyFunc) *Limiter {
	return &Limiter{profile: p, key: key, now: time.Now, windows: map[string]*window{}}
}

// take counts one hit for key. It reports whether the hit is allowed, how
// many remain, and when the window resets.
func (l *Limiter) take(key string) (allowed bool, remaining int, reset time.Time, start time.Time) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.profile.Window)) {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++
	reset = w.start.Add(l.profile.Window)
	remaining = l.profile.Limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= l.profile.Limit, remaining, reset, w.start
}

// refund removes a hit counted in the window that began at start.
func (l *Limiter) refund(key string, start time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.windows[key]; ok && w.start.Equal(start) && w.count > 0 {
		w.count--
	}
}

// Sweep drops windows that ended before now and returns how many it
// removed.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.profile.Window)) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

type rateLimitDetails struct {
	RetryAfter string `json:"retryAfter"`
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	IP         string `json:"ip"`
}

// Middleware enforces the limit on next.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, skip := l.key(r)
		if skip {
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining, reset, start := l.take(key)
		resetIn := int(reset.Sub(l.now()).Round(time.Second) / time.Second)
		if resetIn < 0 {
			resetIn = 0
		}
		h := w.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(l.profile.Limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(resetIn))

		if !allowed {
			h.Set("Retry-After", strconv.Itoa(resetIn))
			span := humanDuration(l.profile.Window)
			writeJSON(w, http.StatusTooManyRequests, envelope{
				StatusCode: http.StatusTooManyRequests,
				Message:    l.profile.Message,
				Error: rateLimitDetails{
					RetryAfter: span,
					Limit:      l.profile.Limit,
					Window:     span,
					IP:         clientIP(r),
				},
			})
			return
		}

		if !l.profile.SkipSuccessful {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status < http.StatusBadRequest {
			l.refund(key, start)
		}
	})
}

// Limits holds the limiters shared by the routes.
type Limits struct {
	General        *Limiter
	Auth           *Limiter
	PasswordReset  *Limiter
	Strict         *Limiter
	DataOperations *Limiter
	// StrictUser is the strict profile keyed by caller for authenticated
	// routes.
	StrictUser *Limiter
}

func NewLimits() *Limits {
	return &Limits{
		General:        NewLimiter(GeneralProfile, KeyByIP),
		Auth:           NewLimiter(AuthProfile, KeyByIP),
		PasswordReset:  NewLimiter(PasswordResetProfile, KeyByIP),
		Strict:         NewLimiter(StrictProfile, KeyByIP),
		DataOperations: NewLimiter(DataOperationsProfile, KeyByIP),
		StrictUser:     NewLimiter(StrictProfile, KeyByUser),
	}
}

// All returns every limiter, for sweeping.
func (l *Limits) All() []*Limiter {
	return []*Limiter{l.General, l.Auth, l.PasswordReset, l.Strict, l.DataOperations, l.StrictUser}
}

// clientIP returns the first X-Forwarded-For hop, else the host part of
// RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	}
	return plural(int(d/time.Second), "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
