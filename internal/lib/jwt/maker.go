// Package jwt выпускает и проверяет токены устройств для HTTP API.
//
// Леджер работает для одного владельца, поэтому учётных записей нет:
// токен привязан к идентификатору устройства и области доступа.
package jwt

import (
	"time"
)

// Maker выпускает и разбирает токены.
type Maker interface {
	GenerateToken(deviceID, scope string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены HS256 секретным ключом.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
