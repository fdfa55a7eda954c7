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

// EndorsementRepository работает с таблицами endorsements и category_endorsements.
type EndorsementRepository struct {
	db *sqlx.DB
}

// NewEndorsementRepository создаёт экземпляр репозитория.
func NewEndorsementRepository(db *sqlx.DB) *EndorsementRepository {
	return &EndorsementRepository{db: db}
}

// GetEndorsement возвращает одобрение пользователя или nil, если его нет.
func (r *EndorsementRepository) GetEndorsement(ctx context.Context, businessID, userID uuid.UUID) (*models.Endorsement, error) {
	var e models.Endorsement
	err := r.db.GetContext(ctx, &e, `
		SELECT * FROM endorsements WHERE business_id = $1 AND user_id = $2
	`, businessID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("endorsement repository: get %w", err)
	}
	return &e, nil
}

// CreateEndorsement вставляет одобрение.
func (r *EndorsementRepository) CreateEndorsement(ctx context.Context, e *models.Endorsement) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO endorsements (business_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, e.BusinessID, e.UserID).Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("endorsement repository: create %w", err)
	}
	return nil
}

// DeleteEndorsement удаляет одобрение по id.
func (r *EndorsementRepository) DeleteEndorsement(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM endorsements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("endorsement repository: delete %w", err)
	}
	return nil
}

// ListEndorsements возвращает все одобрения бизнеса.
func (r *EndorsementRepository) ListEndorsements(ctx context.Context, businessID uuid.UUID) ([]models.Endorsement, error) {
	endorsements := []models.Endorsement{}
	if err := r.db.SelectContext(ctx, &endorsements, `
		SELECT * FROM endorsements WHERE business_id = $1
	`, businessID); err != nil {
		return nil, fmt.Errorf("endorsement repository: list %w", err)
	}
	return endorsements, nil
}

// GetCategoryEndorsement возвращает одобрение в категории или nil.
func (r *EndorsementRepository) GetCategoryEndorsement(ctx context.Context, businessID, userID uuid.UUID, category string) (*models.CategoryEndorsement, error) {
	var e models.CategoryEndorsement
	err := r.db.GetContext(ctx, &e, `
		SELECT * FROM category_endorsements
		WHERE business_id = $1 AND user_id = $2 AND category = $3
	`, businessID, userID, category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("endorsement repository: get category %w", err)
	}
	return &e, nil
}

// CreateCategoryEndorsement вставляет одобрение в категории.
func (r *EndorsementRepository) CreateCategoryEndorsement(ctx context.Context, e *models.CategoryEndorsement) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO category_endorsements (business_id, user_id, category)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, e.BusinessID, e.UserID, e.Category).Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("endorsement repository: create category %w", err)
	}
	return nil
}

// DeleteCategoryEndorsement удаляет одобрение в категории по id.
func (r *EndorsementRepository) DeleteCategoryEndorsement(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM category_endorsements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("endorsement repository: delete category %w", err)
	}
	return nil
}

// ListCategoryEndorsements возвращает все одобрения бизнеса по категориям.
func (r *EndorsementRepository) ListCategoryEndorsements(ctx context.Context, businessID uuid.UUID) ([]models.CategoryEndorsement, error) {
	endorsements := []models.CategoryEndorsement{}
	if err := r.db.SelectContext(ctx, &endorsements, `
		SELECT * FROM category_endorsements WHERE business_id = $1
	`, businessID); err != nil {
		return nil, fmt.Errorf("endorsement repository: list category %w", err)
	}
	return endorsements, nil
}
