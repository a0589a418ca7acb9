// Package create реализует HTTP-обработчик создания покупки в рассрочку.
//
// Handler принимает JSON с данными покупки, валидирует сумму и количество
// взносов и передаёт покупку в леджер. В ответе возвращается созданная запись
// с рассчитанным размером взноса и датой первого взноса.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// DateLayout — формат даты покупки в запросе.
const DateLayout = "2006-01-02"

// Handler управляет HTTP-запросами на создание покупок.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Леджер рассрочек
	validate *validator.Validate // Валидатор структуры входящих данных
	loc      *time.Location      // Часовой пояс, в котором трактуется дата покупки
}

// Service описывает интерфейс создания покупки.
type Service interface {
	Create(ctx context.Context, in models.NewInstallment) models.Installment
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		loc:      loc,
	}
}

// ServeHTTP godoc
// @Summary Создать покупку в рассрочку
// @Description Создаёт покупку, рассчитывает размер взноса и дату первого взноса по дню закрытия карты.
// @Tags Installments
// @Accept  json
// @Produce  json
// @Param request body models.DummyInstallment true "Данные покупки"
// @Success 201 {object} response.Response "Созданная покупка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /installments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.installment.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyInstallment
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

	purchase, err := time.ParseInLocation(DateLayout, req.PurchaseDate, h.loc)
	if err != nil {
		log.Error("failed to parse purchase date", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("purchase_date must be in format 2006-01-02"))
		return
	}

	item := h.service.Create(r.Context(), models.NewInstallment{
		CardID:           req.CardID,
		Description:      req.Description,
		Merchant:         req.Merchant,
		Category:         req.Category,
		TotalAmount:      decimal.NewFromFloat(req.TotalAmount).Round(2),
		InstallmentCount: req.InstallmentCount,
		PurchaseDate:     purchase,
	})

	log.Info("installment created", slog.String("id", item.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"installment": item,
	}))
}
