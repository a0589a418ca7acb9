// Package commitment реализует HTTP-обработчик суммы ежемесячных взносов по активным покупкам.
package commitment

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	TotalMonthlyCommitment() models.Amount
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Ежемесячная нагрузка
// @Tags Installments
// @Produce  json
// @Success 200 {object} response.Response
// @Router /installments/commitment [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	total := h.service.TotalMonthlyCommitment()
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"total_monthly_commitment": total.StringFixed(2),
	}))
}
