package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/platform/metrics"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

// ContextKey avoids collisions with other packages' context values.
type ContextKey string

const (
	UserIDCtxKey   = ContextKey("user_id")
	UserRoleCtxKey = ContextKey("user_role")
)

// JWTAuth validates the bearer token and stores user id and role in the
// request context. Requests without a valid token are rejected.
func JWTAuth(secret string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondJSON(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
					Kind: "unauthorized", Message: "missing bearer token",
				}})
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Warnf("rejected token: %v", err)
				respondJSON(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
					Kind: "unauthorized", Message: "invalid or expired token",
				}})
				return
			}

			userID, _ := claims["sub"].(string)
			role, _ := claims["role"].(string)
			if userID == "" {
				respondJSON(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
					Kind: "unauthorized", Message: "token has no subject",
				}})
				return
			}
			if _, err := primitive.ObjectIDFromHex(userID); err != nil {
				log.Warnf("rejected token with malformed subject %q", userID)
				respondJSON(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
					Kind: "unauthorized", Message: "token subject is not a valid user id",
				}})
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// actorFrom rebuilds the service Actor from context values set by JWTAuth.
func actorFrom(r *http.Request) (service.Actor, error) {
	rawID, _ := r.Context().Value(UserIDCtxKey).(string)
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		// JWTAuth already rejects malformed subjects; this guards handlers
		// mounted without it.
		return service.Actor{}, fmt.Errorf("%w: token subject is not a valid user id", domain.ErrForbidden)
	}

	role, _ := r.Context().Value(UserRoleCtxKey).(string)
	actor := service.Actor{ID: id, Role: entity.Role(role)}
	if !actor.Role.IsValid() {
		actor.Role = entity.RoleGuest
	}
	return actor, nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every request and feeds the latency histogram and error
// counter. The route pattern, not the raw path, is the metric label.
func RequestLogger(log logger.Logger, mm *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			elapsed := time.Since(start)

			if mm != nil {
				mm.HTTPRequestLatency.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
				if sw.status >= 400 {
					mm.HTTPErrorsTotal.WithLabelValues(route, fmt.Sprintf("%d", sw.status)).Inc()
				}
			}

			log.Infof("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, elapsed)
		})
	}
}

// Recoverer turns panics into 500 responses instead of dropped connections.
func Recoverer(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
					respondJSON(w, http.StatusInternalServerError, errorEnvelope{Error: errorBody{
						Kind: "internal", Message: "internal server error",
					}})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
