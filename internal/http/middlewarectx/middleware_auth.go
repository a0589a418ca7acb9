// Package middlewarectx содержит HTTP middleware API: проверку токена устройства
// и ограничение частоты запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// DeviceID — ключ идентификатора устройства в контексте.
	DeviceID Key = "device_id"
	// Scope — ключ области доступа токена в контексте.
	Scope Key = "scope"
)

// TokenParser проверяет токен и возвращает его claims.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// JWTMiddleware проверяет Bearer-токен в заголовке Authorization.
// Запросы, изменяющие данные, требуют области write.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			if !isReadOnly(r.Method) && !claims.CanWrite() {
				log.Warn("write attempt with read-only token", slog.String("device_id", claims.DeviceID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("token does not allow changes"))
				return
			}

			ctx := context.WithValue(r.Context(), DeviceID, claims.DeviceID)
			ctx = context.WithValue(ctx, Scope, claims.Scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
