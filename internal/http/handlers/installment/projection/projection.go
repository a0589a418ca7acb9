// Package projection реализует HTTP-обработчик помесячной проекции взносов.
package projection

import (
	"iter"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

const (
	defaultMonths = 6
	maxMonths     = 60
)

// Handler отдаёт проекцию на months месяцев вперёд, начиная с текущего.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает интерфейс проекции.
type Service interface {
	MonthlyProjection(now time.Time, monthsAhead int) iter.Seq[models.ProjectionMonth]
}

// New создает новый Handler. Текущий месяц определяется в часовом поясе loc.
func New(log *slog.Logger, service Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		log:     log,
		service: service,
		now:     func() time.Time { return time.Now().In(loc) },
	}
}

// ServeHTTP godoc
// @Summary Проекция взносов по месяцам
// @Tags Installments
// @Produce  json
// @Param months query int false "Количество месяцев, 1..60, по умолчанию 6"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректное количество месяцев"
// @Router /installments/projection [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.installment.projection"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	months := defaultMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxMonths {
			log.Error("invalid months parameter", slog.String("months", raw), sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("months must be an integer between 1 and 60"))
			return
		}
		months = n
	}

	result := slices.Collect(h.service.MonthlyProjection(h.now(), months))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"months": result,
	}))
}
