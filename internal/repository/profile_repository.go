package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/classifieds-backend/internal/models"
)

// ProfileRepository отвечает за таблицу profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository создаёт экземпляр репозитория.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID возвращает профиль или nil, если пользователь ещё не заполнил его.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM profiles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile repository: get by id %w", err)
	}
	return &p, nil
}

// Upsert создаёт или обновляет профиль пользователя.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, first_name, last_name, full_name, phone, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE
		SET email = COALESCE(EXCLUDED.email, profiles.email),
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			full_name = EXCLUDED.full_name,
			phone = EXCLUDED.phone,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Email, p.FirstName, p.LastName, p.FullName, p.Phone, p.AvatarURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("profile repository: upsert %w", err)
	}
	return nil
}
