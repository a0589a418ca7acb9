// Package read реализует HTTP-обработчик получения карты по ID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
	"github.com/magabrotheeeer/installment-tracker/internal/services/card"
)

// Handler обрабатывает запросы на получение карты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения карты.
type Service interface {
	GetCard(ctx context.Context, id string) (*models.Card, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить карту
// @Tags Cards
// @Produce  json
// @Param id path string true "ID карты"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Карта не найдена"
// @Router /cards/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.card.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	c, err := h.service.GetCard(r.Context(), id)
	if errors.Is(err, card.ErrCardNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("card not found"))
		return
	}
	if err != nil {
		log.Error("failed to read card", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read card"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"card": c,
	}))
}
