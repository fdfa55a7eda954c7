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

// BusinessRepository отвечает за таблицу businesses.
type BusinessRepository struct {
	db *sqlx.DB
}

// NewBusinessRepository создаёт экземпляр репозитория.
func NewBusinessRepository(db *sqlx.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

const businessColumns = `
	owner_id, name, business_type, legal_structure, description,
	street_address, suburb, city, region, postal_code, country,
	email, phone, mobile, website, facebook_url, linkedin_url, instagram_url,
	logo_url, cover_image_url, gallery, working_hours, branches,
	latitude, longitude, geocoding_status`

const businessValues = `
	:owner_id, :name, :business_type, :legal_structure, :description,
	:street_address, :suburb, :city, :region, :postal_code, :country,
	:email, :phone, :mobile, :website, :facebook_url, :linkedin_url, :instagram_url,
	:logo_url, :cover_image_url, :gallery, :working_hours, :branches,
	:latitude, :longitude, :geocoding_status`

// Create сохраняет новый бизнес и заполняет id и временные метки.
func (r *BusinessRepository) Create(ctx context.Context, b *models.Business) error {
	query := `INSERT INTO businesses (` + businessColumns + `) VALUES (` + businessValues + `)
		RETURNING id, created_at, updated_at`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, b)
	if err != nil {
		return fmt.Errorf("business repository: create %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return fmt.Errorf("business repository: create scan %w", err)
		}
	}
	return rows.Err()
}

// GetByID возвращает бизнес по идентификатору.
func (r *BusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	return common.GetByID[models.Business](ctx, r.db, "businesses", id, apperror.ErrBusinessNotFound)
}

// Update обновляет профиль. Условие по owner_id делает запрос безопасным без отдельной проверки.
func (r *BusinessRepository) Update(ctx context.Context, b *models.Business) error {
	query := `
		UPDATE businesses SET
			name = :name, business_type = :business_type, legal_structure = :legal_structure,
			description = :description, street_address = :street_address, suburb = :suburb,
			city = :city, region = :region, postal_code = :postal_code, country = :country,
			email = :email, phone = :phone, mobile = :mobile, website = :website,
			facebook_url = :facebook_url, linkedin_url = :linkedin_url, instagram_url = :instagram_url,
			logo_url = :logo_url, cover_image_url = :cover_image_url, gallery = :gallery,
			working_hours = :working_hours, branches = :branches,
			latitude = :latitude, longitude = :longitude, geocoding_status = :geocoding_status,
			updated_at = NOW()
		WHERE id = :id AND owner_id = :owner_id
	`

	res, err := sqlx.NamedExecContext(ctx, r.db, query, b)
	if err != nil {
		return fmt.Errorf("business repository: update %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("business repository: update rows affected %w", err)
	}
	if n == 0 {
		return apperror.ErrBusinessNotFound
	}
	return nil
}

// UpdateLocation сохраняет результат геокодирования.
func (r *BusinessRepository) UpdateLocation(ctx context.Context, id, ownerID uuid.UUID, lat, lng *float64, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE businesses
		SET latitude = $3, longitude = $4, geocoding_status = $5, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID, lat, lng, status)
	if err != nil {
		return fmt.Errorf("business repository: update location %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("business repository: update location rows affected %w", err)
	}
	if n == 0 {
		return apperror.ErrBusinessNotFound
	}
	return nil
}

// Delete удаляет бизнес владельца.
func (r *BusinessRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return common.DeleteOwned(ctx, r.db, "businesses", "owner_id", id, ownerID, apperror.ErrBusinessNotFound)
}

// List возвращает публичный список с фильтрами и пагинацией.
func (r *BusinessRepository) List(ctx context.Context, f models.BusinessFilter) ([]models.Business, error) {
	var p common.Placeholders
	if f.Query != "" {
		p.Add("(name ILIKE ? OR description ILIKE ?)", "%"+common.EscapeLike(f.Query)+"%")
	}
	if f.BusinessType != "" {
		p.Add("business_type = ?", f.BusinessType)
	}
	if f.City != "" {
		p.Add("city ILIKE ?", common.EscapeLike(f.City))
	}
	if f.Region != "" {
		p.Add("region ILIKE ?", common.EscapeLike(f.Region))
	}

	query := "SELECT * FROM businesses" + p.Where() + " ORDER BY " + businessOrder(f.Sort)
	query += " LIMIT " + p.Arg(f.Limit) + " OFFSET " + p.Arg(f.Offset)

	businesses := []models.Business{}
	if err := r.db.SelectContext(ctx, &businesses, query, p.Args()...); err != nil {
		return nil, fmt.Errorf("business repository: list %w", err)
	}
	return businesses, nil
}

// ListByOwner возвращает бизнесы пользователя.
func (r *BusinessRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Business, error) {
	businesses := []models.Business{}
	if err := r.db.SelectContext(ctx, &businesses, `
		SELECT * FROM businesses WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID); err != nil {
		return nil, fmt.Errorf("business repository: list by owner %w", err)
	}
	return businesses, nil
}

// ListGeocoded возвращает бизнесы с успешно определёнными координатами (для карты).
func (r *BusinessRepository) ListGeocoded(ctx context.Context, businessType string) ([]models.Business, error) {
	var p common.Placeholders
	p.Add("geocoding_status = ?", models.GeocodingSuccess)
	if businessType != "" {
		p.Add("business_type = ?", businessType)
	}
	query := "SELECT * FROM businesses" + p.Where() + " AND latitude IS NOT NULL AND longitude IS NOT NULL ORDER BY name"

	businesses := []models.Business{}
	if err := r.db.SelectContext(ctx, &businesses, query, p.Args()...); err != nil {
		return nil, fmt.Errorf("business repository: list geocoded %w", err)
	}
	return businesses, nil
}

func businessOrder(sort string) string {
	switch sort {
	case "oldest":
		return "created_at ASC"
	case "name":
		return "name ASC"
	default:
		return "created_at DESC"
	}
}
