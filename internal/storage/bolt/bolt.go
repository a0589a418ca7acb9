// Package bolt реализует хранилище рассрочек и карт во встраиваемой BoltDB.
//
// Используется для развёртывания на одном устройстве, без внешней базы данных.
// Рассрочки хранятся в бакете installments под ключом порядкового номера,
// чтобы сохранялся порядок вставки, карты хранятся в бакете cards под своим ID.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/magabrotheeeer/installment-tracker/internal/models"
	"github.com/magabrotheeeer/installment-tracker/internal/storage"
)

var (
	installmentsBucket = []byte("installments")
	cardsBucket        = []byte("cards")
)

// Storage оборачивает файл BoltDB.
type Storage struct {
	db *bolt.DB
}

// New открывает (или создаёт) файл базы и гарантирует наличие бакетов.
func New(path string) (*Storage, error) {
	const op = "storage.bolt.New"

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{installmentsBucket, cardsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Close освобождает блокировку файла.
func (s *Storage) Close() error {
	return s.db.Close()
}

// LoadInstallments читает всю коллекцию в порядке вставки.
func (s *Storage) LoadInstallments(_ context.Context) ([]models.Installment, error) {
	const op = "storage.bolt.LoadInstallments"

	var items []models.Installment
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(installmentsBucket).ForEach(func(_, v []byte) error {
			var item models.Installment
			if err := json.Unmarshal(v, &item); err != nil {
				return err
			}
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// ReplaceInstallments пересоздаёт бакет и записывает коллекцию целиком.
func (s *Storage) ReplaceInstallments(_ context.Context, items []models.Installment) error {
	const op = "storage.bolt.ReplaceInstallments"

	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(installmentsBucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		b, err := tx.CreateBucket(installmentsBucket)
		if err != nil {
			return err
		}
		for pos, item := range items {
			data, err := json.Marshal(item)
			if err != nil {
				return err
			}
			if err := b.Put(positionKey(pos), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateCard сохраняет карту.
func (s *Storage) CreateCard(_ context.Context, card models.Card) error {
	const op = "storage.bolt.CreateCard"

	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cardsBucket).Put([]byte(card.ID), data)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadCard возвращает карту по ID или storage.ErrNotFound.
func (s *Storage) ReadCard(_ context.Context, id string) (*models.Card, error) {
	const op = "storage.bolt.ReadCard"

	var card models.Card
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(cardsBucket).Get([]byte(id))
		if v == nil {
			return storage.ErrNotFound
		}
		return json.Unmarshal(v, &card)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &card, nil
}

// ListCards возвращает все карты в порядке ключей.
func (s *Storage) ListCards(_ context.Context) ([]*models.Card, error) {
	const op = "storage.bolt.ListCards"

	var cards []*models.Card
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(cardsBucket).ForEach(func(_, v []byte) error {
			var card models.Card
			if err := json.Unmarshal(v, &card); err != nil {
				return err
			}
			cards = append(cards, &card)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cards, nil
}

// RemoveCard удаляет карту. Отсутствующий ключ даёт 0 без ошибки.
func (s *Storage) RemoveCard(_ context.Context, id string) (int, error) {
	const op = "storage.bolt.RemoveCard"

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(cardsBucket)
		if b.Get([]byte(id)) == nil {
			return nil
		}
		removed = 1
		return b.Delete([]byte(id))
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return removed, nil
}

// positionKey кодирует порядковый номер big-endian, чтобы ForEach шёл в порядке вставки.
func positionKey(pos int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(pos))
	return key
}
