package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/classifieds-backend/internal/models"
)

// RecommendationRepository работает с таблицей recommendations.
type RecommendationRepository struct {
	db *sqlx.DB
}

// NewRecommendationRepository создаёт экземпляр репозитория.
func NewRecommendationRepository(db *sqlx.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// GetByBusinessAndUser возвращает рекомендацию пользователя или nil.
func (r *RecommendationRepository) GetByBusinessAndUser(ctx context.Context, businessID, userID uuid.UUID) (*models.Recommendation, error) {
	var rec models.Recommendation
	err := r.db.GetContext(ctx, &rec, `
		SELECT * FROM recommendations WHERE business_id = $1 AND user_id = $2
	`, businessID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recommendation repository: get %w", err)
	}
	return &rec, nil
}

// Create вставляет новую рекомендацию.
func (r *RecommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO recommendations (business_id, user_id, relationship_type, tags, recommender_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, rec.BusinessID, rec.UserID, rec.RelationshipType, pq.Array([]string(rec.Tags)), rec.RecommenderName,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return fmt.Errorf("recommendation repository: create %w", err)
	}
	return nil
}

// UpdateDetails обновляет тип отношений и теги существующей рекомендации.
func (r *RecommendationRepository) UpdateDetails(ctx context.Context, rec *models.Recommendation) error {
	if err := r.db.QueryRowxContext(ctx, `
		UPDATE recommendations
		SET relationship_type = $2, tags = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, rec.ID, rec.RelationshipType, pq.Array([]string(rec.Tags))).Scan(&rec.UpdatedAt); err != nil {
		return fmt.Errorf("recommendation repository: update %w", err)
	}
	return nil
}

// Delete удаляет рекомендацию пользователя. Возвращает false, если удалять было нечего.
func (r *RecommendationRepository) Delete(ctx context.Context, businessID, userID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM recommendations WHERE business_id = $1 AND user_id = $2
	`, businessID, userID)
	if err != nil {
		return false, fmt.Errorf("recommendation repository: delete %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("recommendation repository: delete rows affected %w", err)
	}
	return n > 0, nil
}

// ListByBusiness возвращает рекомендации бизнеса, новые первыми.
func (r *RecommendationRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Recommendation, error) {
	recs := []models.Recommendation{}
	if err := r.db.SelectContext(ctx, &recs, `
		SELECT * FROM recommendations WHERE business_id = $1 ORDER BY created_at DESC
	`, businessID); err != nil {
		return nil, fmt.Errorf("recommendation repository: list %w", err)
	}
	return recs, nil
}
