// Package tracker собирает процесс API рассрочек: хранилище, сервисы, планировщик и маршруты.
package tracker

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	cardcreate "github.com/magabrotheeeer/installment-tracker/internal/http/handlers/card/create"
	cardlist "github.com/magabrotheeeer/installment-tracker/internal/http/handlers/card/list"
	cardread "github.com/magabrotheeeer/installment-tracker/internal/http/handlers/card/read"
	cardremove "github.com/magabrotheeeer/installment-tracker/internal/http/handlers/card/remove"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/card/statistics"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/installment/commitment"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/installment/create"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/installment/list"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/installment/pay"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/installment/projection"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/installment/read"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/installment/remove"
	"github.com/magabrotheeeer/installment-tracker/internal/http/handlers/installment/update"
	"github.com/magabrotheeeer/installment-tracker/internal/http/middlewarectx"
	cardservice "github.com/magabrotheeeer/installment-tracker/internal/services/card"
	"github.com/magabrotheeeer/installment-tracker/internal/services/installment"
)

// Routes хранит зависимости, нужные для регистрации маршрутов.
type Routes struct {
	Log      *slog.Logger
	Ledger   *installment.Ledger
	Cards    *cardservice.Service
	Tokens   middlewarectx.TokenParser
	Location *time.Location
	Limiter  *rate.Limiter
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, deps Routes) {
	logger := deps.Log

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Get("/health", health.New(logger).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, deps.Limiter))
		r.Use(middlewarectx.JWTMiddleware(deps.Tokens, logger))

		r.Post("/cards", cardcreate.New(logger, deps.Cards).ServeHTTP)
		r.Get("/cards", cardlist.New(logger, deps.Cards).ServeHTTP)
		r.Get("/cards/{id}", cardread.New(logger, deps.Cards).ServeHTTP)
		r.Delete("/cards/{id}", cardremove.New(logger, deps.Cards).ServeHTTP)
		r.Get("/cards/{id}/statistics", statistics.New(logger, deps.Ledger).ServeHTTP)

		// статические пути до {id}
		r.Get("/installments/commitment", commitment.New(logger, deps.Ledger).ServeHTTP)
		r.Get("/installments/projection", projection.New(logger, deps.Ledger, deps.Location).ServeHTTP)

		r.Post("/installments", create.New(logger, deps.Ledger, deps.Location).ServeHTTP)
		r.Get("/installments", list.New(logger, deps.Ledger).ServeHTTP)
		r.Get("/installments/{id}", read.New(logger, deps.Ledger).ServeHTTP)
		r.Patch("/installments/{id}", update.New(logger, deps.Ledger).ServeHTTP)
		r.Delete("/installments/{id}", remove.New(logger, deps.Ledger).ServeHTTP)
		r.Post("/installments/{id}/payments", pay.New(logger, deps.Ledger).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
