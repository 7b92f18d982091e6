package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/lespetitsreves/lprds/internal/config"
	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
	svc "github.com/lespetitsreves/lprds/internal/services"
)

// Tokens are issued by the external auth service and verified here (HS256,
// shared secret). The subject claim is the external user id a Profile links
// to; the profile row is the source of truth for the role.
type Claims struct {
	jwt.RegisteredClaims
}

type ctxKey int

const actorKey ctxKey = 0

// ActorFrom returns the authenticated actor; zero value when unauthenticated.
func ActorFrom(r *http.Request) svc.Actor {
	a, _ := r.Context().Value(actorKey).(svc.Actor)
	return a
}

// Auth verifies the bearer token and resolves its subject to a Profile.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			writeErr(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeErr(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return config.JWTSecret(), nil
		})
		if err != nil || !token.Valid {
			writeErr(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*Claims)
		if !ok || claims.Subject == "" {
			writeErr(w, http.StatusUnauthorized, "invalid claims")
			return
		}

		var profile models.Profile
		if err := db.Conn().Where("user_id = ?", claims.Subject).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeErr(w, http.StatusUnauthorized, "no profile for token")
				return
			}
			serviceErr(w, err)
			return
		}

		actor := svc.Actor{ProfileID: profile.ID, Role: profile.Role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[ActorFrom(r).Role]; !ok {
				writeErr(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
