package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/classifieds-backend/internal/models"
)

// ErrTokenSubject токен без корректного subject.
var ErrTokenSubject = errors.New("token: некорректный subject")

// accessClaims клеймы access токена провайдера авторизации.
type accessClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager проверяет access токены провайдера авторизации (HS256, общий секрет).
type TokenManager struct {
	secret []byte
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// ParseAccess проверяет токен и возвращает пользователя запроса.
func (m *TokenManager) ParseAccess(token string) (*models.Actor, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenSubject
	}

	return &models.Actor{ID: userID, Email: claims.Email, Role: claims.Role}, nil
}

// Sign выпускает токен тем же секретом. Нужен для локальной разработки и тестов,
// в production токены выпускает провайдер.
func (m *TokenManager) Sign(actor models.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Email: actor.Email,
		Role:  actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
