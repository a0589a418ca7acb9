// Package update реализует HTTP-обработчик частичного обновления покупки.
//
// Правка, после которой оплаченных взносов оказалось бы больше, чем взносов
// всего, отклоняется с кодом 422.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
	"github.com/magabrotheeeer/installment-tracker/internal/services/installment"
)

// Handler обрабатывает PATCH-запросы к покупке.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс правки покупки.
type Service interface {
	Edit(ctx context.Context, id string, patch models.InstallmentPatch) (int, error)
	Get(id string) (models.Installment, bool)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить покупку
// @Tags Installments
// @Accept  json
// @Produce  json
// @Param id path string true "ID покупки"
// @Param request body models.DummyInstallmentPatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Покупка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /installments/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.installment.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req models.DummyInstallmentPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	affected, err := h.service.Edit(r.Context(), id, toPatch(req))
	var vErr *installment.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("edit rejected", slog.String("id", id), sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(vErr.Error()))
		return
	case err != nil:
		log.Error("failed to edit installment", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update installment"))
		return
	case affected == 0:
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("installment not found"))
		return
	}

	item, _ := h.service.Get(id)
	log.Info("installment updated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"installment": item,
	}))
}

func toPatch(req models.DummyInstallmentPatch) models.InstallmentPatch {
	patch := models.InstallmentPatch{
		CardID:           req.CardID,
		Description:      req.Description,
		Merchant:         req.Merchant,
		Category:         req.Category,
		InstallmentCount: req.InstallmentCount,
		PaidInstallments: req.PaidInstallments,
	}
	if req.TotalAmount != nil {
		total := decimal.NewFromFloat(*req.TotalAmount).Round(2)
		patch.TotalAmount = &total
	}
	return patch
}
