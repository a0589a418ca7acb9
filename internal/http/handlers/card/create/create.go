// Package create реализует HTTP-обработчик регистрации кредитной карты.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/installment-tracker/internal/http/response"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

// Handler управляет HTTP-запросами на создание карт.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс создания карты.
type Service interface {
	Create(ctx context.Context, req models.DummyCard) (models.Card, error)
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
// @Summary Зарегистрировать карту
// @Tags Cards
// @Accept  json
// @Produce  json
// @Param request body models.DummyCard true "Данные карты"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /cards [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.card.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCard
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

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		log.Error("failed to create card", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create card"))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"card": c,
	}))
}
