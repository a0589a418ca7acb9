// Package statistics реализует HTTP-обработчик статистики активных рассрочек карты.
package statistics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	StatisticsForCard(cardID string) models.CardStatistics
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статистика рассрочек карты
// @Description Количество активных покупок, сумма ежемесячных взносов и непогашенный остаток.
// @Tags Cards
// @Produce  json
// @Param id path string true "ID карты"
// @Success 200 {object} response.Response
// @Router /cards/{id}/statistics [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats := h.service.StatisticsForCard(chi.URLParam(r, "id"))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"statistics": stats,
	}))
}
