// Package remove реализует HTTP-обработчик удаления покупки.
// Уже отправленные расходы покупки не удаляются.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
)

// Handler обрабатывает DELETE-запросы к покупке.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс удаления покупки.
type Service interface {
	Delete(ctx context.Context, id string) int
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить покупку
// @Tags Installments
// @Produce  json
// @Param id path string true "ID покупки"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Покупка не найдена"
// @Router /installments/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.installment.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	deleted := h.service.Delete(r.Context(), id)
	if deleted == 0 {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("installment not found"))
		return
	}

	log.Info("installment removed", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted": deleted,
	}))
}
