package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
	"github.com/ignatzorin/classifieds-backend/internal/repository/common"
)

// MediaRepository работает с таблицей media_files.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository создаёт экземпляр.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create сохраняет запись о файле.
func (r *MediaRepository) Create(ctx context.Context, media *models.MediaFile) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO media_files (user_id, file_path, file_type, file_size, url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, media.UserID, media.FilePath, media.FileType, media.FileSize, media.URL,
	).Scan(&media.ID, &media.CreatedAt); err != nil {
		return fmt.Errorf("media repository: create %w", err)
	}
	return nil
}

// GetByID возвращает запись о файле.
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	return common.GetByID[models.MediaFile](ctx, r.db, "media_files", id, apperror.ErrMediaNotFound)
}

// Delete удаляет запись о файле владельца.
func (r *MediaRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return common.DeleteOwned(ctx, r.db, "media_files", "user_id", id, userID, apperror.ErrMediaNotFound)
}
