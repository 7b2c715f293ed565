package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"lucky-wheel/internal/auth"
)

// RequestLogging logs one line per request with status and duration.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

// Authenticate validates the Bearer token and places the caller's identity
// in the request context. The admin role comes from the token's role claim
// or from the configured privileged-account list.
func Authenticate(jwtSecret string, isAdmin func(int64) bool) func(http.Handler) http.Handler {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				respondError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
				return
			}

			var claims jwt.MapClaims
			if _, err := jwt.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				respondError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
				return
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				respondError(w, http.StatusUnauthorized, codeUnauthorized, "token has no subject")
				return
			}
			userID, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				respondError(w, http.StatusUnauthorized, codeUnauthorized, "token subject is not a user id")
				return
			}

			role, _ := claims["role"].(string)
			if isAdmin != nil && isAdmin(userID) {
				role = auth.RoleAdmin
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userLimiters hands out one token bucket per user id.
type userLimiters struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func (ul *userLimiters) get(userID int64) *rate.Limiter {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	l, ok := ul.limiters[userID]
	if !ok {
		l = rate.NewLimiter(ul.rps, ul.burst)
		ul.limiters[userID] = l
	}
	return l
}

// RateLimit throttles authenticated callers per user id. Must run after
// Authenticate.
func RateLimit(requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	ul := &userLimiters{
		limiters: make(map[int64]*rate.Limiter),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if ok && !ul.get(id.UserID).Allow() {
				respondError(w, http.StatusTooManyRequests, codeRateLimited, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
