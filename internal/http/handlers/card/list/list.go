// Package list реализует HTTP-обработчик списка карт.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	List(ctx context.Context) ([]*models.Card, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список карт
// @Tags Cards
// @Produce  json
// @Success 200 {object} response.Response
// @Router /cards [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.card.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cards, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list cards", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list cards"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"cards": cards,
	}))
}
