// Package remove реализует HTTP-обработчик удаления карты.
// Покупки в рассрочку удалённой карты остаются в леджере.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Delete(ctx context.Context, id string) (int, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить карту
// @Tags Cards
// @Produce  json
// @Param id path string true "ID карты"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Карта не найдена"
// @Router /cards/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.card.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		log.Error("failed to remove card", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove card"))
		return
	}
	if deleted == 0 {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("card not found"))
		return
	}

	log.Info("card removed", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted": deleted,
	}))
}
