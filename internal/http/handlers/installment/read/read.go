// Package read реализует HTTP-обработчик получения покупки по ID.
package read

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// Handler обрабатывает запросы на получение покупки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения покупки.
type Service interface {
	Get(id string) (models.Installment, bool)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить покупку
// @Tags Installments
// @Produce  json
// @Param id path string true "ID покупки"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Покупка не найдена"
// @Router /installments/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.installment.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	item, ok := h.service.Get(id)
	if !ok {
		log.Info("installment not found", slog.String("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("installment not found"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"installment": item,
	}))
}
