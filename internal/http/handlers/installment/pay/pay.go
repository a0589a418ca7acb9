// Package pay реализует HTTP-обработчик ручной регистрации очередного взноса.
package pay

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// Handler регистрирует оплату взноса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс регистрации взноса.
type Service interface {
	Get(id string) (models.Installment, bool)
	RegisterPayment(ctx context.Context, id string) bool
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Зарегистрировать взнос
// @Description Увеличивает число оплаченных взносов на один и сдвигает дату следующего взноса.
// @Tags Installments
// @Produce  json
// @Param id path string true "ID покупки"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Покупка не найдена"
// @Failure 409 {object} response.ErrorResponse "Покупка уже оплачена"
// @Router /installments/{id}/payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.installment.pay"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if !h.service.RegisterPayment(r.Context(), id) {
		if _, ok := h.service.Get(id); !ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("installment not found"))
			return
		}
		log.Info("payment ignored, installment completed", slog.String("id", id))
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("installment already completed"))
		return
	}

	item, _ := h.service.Get(id)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"installment": item,
	}))
}
