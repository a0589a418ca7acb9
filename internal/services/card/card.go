// Package card реализует реестр кредитных карт с кэшем чтения в Redis.
package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/installment-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/installment-tracker/internal/models"
	"github.com/magabrotheeeer/installment-tracker/internal/storage"
)

// ErrCardNotFound возвращается, если карты с таким ID нет.
var ErrCardNotFound = errors.New("card not found")

const cacheTTL = time.Hour

// Repository определяет методы хранилища карт.
type Repository interface {
	CreateCard(ctx context.Context, card models.Card) error
	ReadCard(ctx context.Context, id string) (*models.Card, error)
	ListCards(ctx context.Context) ([]*models.Card, error)
	RemoveCard(ctx context.Context, id string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует реестр карт. Ошибки кэша только логируются.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewService создаёт Service. При cache == nil чтение идёт напрямую в хранилище.
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func cacheKey(id string) string {
	return "card:" + id
}

// Create сохраняет новую карту и возвращает её.
func (s *Service) Create(ctx context.Context, req models.DummyCard) (models.Card, error) {
	const op = "services.card.Create"

	c := models.Card{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Color:        req.Color,
		StatementDay: req.StatementDay,
		PaymentDay:   req.PaymentDay,
	}
	if err := s.repo.CreateCard(ctx, c); err != nil {
		return models.Card{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("card created", sl.Op(op), slog.String("id", c.ID))

	s.setCache(ctx, c)
	return c, nil
}

// GetCard возвращает карту по ID: сначала из кэша, затем из хранилища.
func (s *Service) GetCard(ctx context.Context, id string) (*models.Card, error) {
	const op = "services.card.GetCard"

	if s.cache != nil {
		var cached models.Card
		found, err := s.cache.Get(ctx, cacheKey(id), &cached)
		if err != nil {
			s.log.Warn("failed to read card from cache", sl.Op(op), slog.String("id", id), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	c, err := s.repo.ReadCard(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.setCache(ctx, *c)
	return c, nil
}

// List возвращает все карты.
func (s *Service) List(ctx context.Context) ([]*models.Card, error) {
	const op = "services.card.List"

	cards, err := s.repo.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cards, nil
}

// Delete удаляет карту и сбрасывает кэш. Рассрочки карты остаются.
func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	const op = "services.card.Delete"

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
			s.log.Warn("failed to remove from cache", sl.Op(op), slog.String("id", id), sl.Err(err))
		}
	}
	count, err := s.repo.RemoveCard(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

func (s *Service) setCache(ctx context.Context, c models.Card) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(c.ID), c, cacheTTL); err != nil {
		s.log.Warn("failed to cache card", slog.String("key", cacheKey(c.ID)), sl.Err(err))
	}
}
