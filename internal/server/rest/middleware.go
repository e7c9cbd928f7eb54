package rest

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/server/auth"
)

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.wroteHeader = true
	}
	return s.ResponseWriter.Write(b)
}

// loggingMiddleware logs every request once it has been served.
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := h.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
			"ip", clientIP(r))
	})
}

// recoverMiddleware turns a panic into a 500 response.
func (h *Handler) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				h.logger.Error(r.Context(), "panic serving request",
					"method", r.Method, "path", r.URL.Path, "panic", v, "stack", string(debug.Stack()))
				h.respondInternal(w, r, fmt.Errorf("panic: %v", v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// permissionDenied is the 403 payload.
type permissionDenied struct {
	RequiredPermission string   `json:"requiredPermission"`
	UserPermissions    []string `json:"userPermissions"`
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requirePermission authenticates the caller and, when permission is not
// empty, checks that the caller's role grants it. The resulting Principal
// is stored in the request context.
func (h *Handler) requirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				h.respondError(w, r, http.StatusUnauthorized, msgTokenNotFound, nil, nil)
				return
			}

			p, err := h.auth.Authenticate(r.Context(), token)
			if err != nil {
				if isAuthError(err) {
					h.respondError(w, r, http.StatusUnauthorized, msgAuthenticationFailed, nil, err)
					return
				}
				h.respondInternal(w, r, err)
				return
			}

			r = r.WithContext(auth.WithPrincipal(r.Context(), p))
			if permission != "" && !p.Has(permission) {
				h.respondError(w, r, http.StatusForbidden, msgInsufficientPerms, permissionDenied{
					RequiredPermission: permission,
					UserPermissions:    p.Permissions,
				}, common.ErrorForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrorUnauthorized)
}

// chain wraps h with mws, the first being outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
