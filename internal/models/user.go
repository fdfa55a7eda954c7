package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile публичный профиль пользователя. ID совпадает с subject токена провайдера авторизации.
type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     *string   `db:"email" json:"email,omitempty"`
	FirstName *string   `db:"first_name" json:"first_name,omitempty"`
	LastName  *string   `db:"last_name" json:"last_name,omitempty"`
	FullName  *string   `db:"full_name" json:"full_name,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Actor аутентифицированный пользователь запроса.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  string
}
