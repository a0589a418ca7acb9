package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Области доступа токена.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// CustomClaims описывает данные, хранящиеся в токене.
type CustomClaims struct {
	DeviceID             string `json:"device_id"`
	Scope                string `json:"scope"` // read или write
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt и пр.
}

// CanWrite сообщает, разрешены ли токену изменяющие запросы.
func (c *CustomClaims) CanWrite() bool {
	return c.Scope == ScopeWrite
}

// GenerateToken создаёт токен для устройства. Время жизни определяется tokenTTL.
func (j *MakerImpl) GenerateToken(deviceID, scope string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		DeviceID: deviceID,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken проверяет подпись и срок действия и возвращает claims.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
