// Package list реализует HTTP-обработчик списка покупок с фильтром по карте и статусу.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// Handler обрабатывает запросы на список покупок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки покупок.
type Service interface {
	List(filter models.Filter) []models.Installment
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список покупок
// @Tags Installments
// @Produce  json
// @Param card_id query string false "ID карты"
// @Param status query string false "active или completed"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неизвестный статус"
// @Router /installments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.installment.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := models.Filter{
		CardID: r.URL.Query().Get("card_id"),
		Status: models.Status(r.URL.Query().Get("status")),
	}
	switch filter.Status {
	case "", models.StatusActive, models.StatusCompleted:
	default:
		log.Error("unknown status filter", slog.String("status", string(filter.Status)))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("status must be active or completed"))
		return
	}

	items := h.service.List(filter)
	log.Debug("installments listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"installments": items,
	}))
}
