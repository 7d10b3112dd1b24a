package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"crafthub/pkg/logger"
	"crafthub/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const actorKey contextKey = "identity"

func WithActor(ctx context.Context, id model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, id)
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	id, ok := ctx.Value(actorKey).(model.Actor)
	return id, ok && id.UserID != ""
}

// Authenticate resolves a bearer token when one is present. Requests without
// an Authorization header pass through anonymously; routes that need a caller
// are wrapped with RequireAuth.
func Authenticate(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || raw == "" {
				rejectUnauthorized(w, log, r, "missing bearer token")
				return
			}

			id, err := ParseToken(secret, raw)
			if err != nil {
				log.Debug("Token rejected", "request_id", requestIDFrom(r), "error", err)
				rejectUnauthorized(w, log, r, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), id)))
		})
	}
}

// ParseToken validates an HS256 token and extracts the caller. The user id
// is read from the "id" claim and falls back to "sub".
func ParseToken(secret, raw string) (model.Actor, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Actor{}, err
	}
	if !tok.Valid {
		return model.Actor{}, errors.New("token is not valid")
	}

	id := model.Actor{
		UserID: claimString(claims, "id"),
		Role:   claimString(claims, "role"),
	}
	if id.UserID == "" {
		id.UserID = claimString(claims, "sub")
	}
	if id.UserID == "" {
		return model.Actor{}, errors.New("token carries no user id")
	}
	if id.Role == "" {
		id.Role = model.RoleUser
	}
	return id, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

func RequireAuth(log *logger.Logger, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			rejectUnauthorized(w, log, r, "authentication required")
			return
		}
		next(w, r, ps)
	}
}

func RequireRole(log *logger.Logger, next httprouter.Handle, roles ...string) httprouter.Handle {
	return RequireAuth(log, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, _ := ActorFromContext(r.Context())
		if !id.IsAdmin() && !slices.Contains(roles, id.Role) {
			log.Warn("Role not permitted",
				"request_id", requestIDFrom(r),
				"user_id", id.UserID,
				"role", id.Role,
				"path", r.URL.Path,
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"Forbidden","code":"FORBIDDEN"}`))
			return
		}
		next(w, r, ps)
	})
}

func rejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Unauthorized request",
		"request_id", requestIDFrom(r),
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"error":%q,"code":"UNAUTHORIZED"}`, reason)
}

func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
