package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/classifieds-backend/internal/models"
)

// ProfileViewRepository пишет и считает просмотры профилей бизнесов.
type ProfileViewRepository struct {
	db *sqlx.DB
}

// NewProfileViewRepository создаёт экземпляр репозитория.
func NewProfileViewRepository(db *sqlx.DB) *ProfileViewRepository {
	return &ProfileViewRepository{db: db}
}

// Create добавляет событие просмотра.
func (r *ProfileViewRepository) Create(ctx context.Context, v *models.ProfileView) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO profile_views (business_id, viewer_id, ip_hash)
		VALUES ($1, $2, $3)
		RETURNING id, viewed_at
	`, v.BusinessID, v.ViewerID, v.IPHash).Scan(&v.ID, &v.ViewedAt); err != nil {
		return fmt.Errorf("profile view repository: create %w", err)
	}
	return nil
}

// CountSince считает просмотры бизнеса начиная с момента since.
func (r *ProfileViewRepository) CountSince(ctx context.Context, businessID uuid.UUID, since time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM profile_views WHERE business_id = $1 AND viewed_at >= $2
	`, businessID, since); err != nil {
		return 0, fmt.Errorf("profile view repository: count %w", err)
	}
	return count, nil
}
