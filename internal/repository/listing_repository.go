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

// ListingRepository работает со всеми таблицами объявлений (*_ads).
// Таблица выбирается по категории, схема у всех таблиц одинаковая.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository создаёт экземпляр репозитория.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func tableFor(category models.ListingCategory) (string, error) {
	table, ok := category.Table()
	if !ok {
		return "", apperror.Validation("неизвестная категория объявления: %s", category)
	}
	return table, nil
}

// Create сохраняет новое объявление.
func (r *ListingRepository) Create(ctx context.Context, l *models.Listing) error {
	table, err := tableFor(l.Category)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (
			user_id, title, description, price, price_type, city, region,
			contact_name, contact_phone, contact_email, images, details, status
		) VALUES (
			:user_id, :title, :description, :price, :price_type, :city, :region,
			:contact_name, :contact_phone, :contact_email, :images, :details, :status
		) RETURNING id, created_at, updated_at`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, l)
	if err != nil {
		return fmt.Errorf("listing repository: create %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return fmt.Errorf("listing repository: create scan %w", err)
		}
	}
	return rows.Err()
}

// GetByID возвращает объявление категории.
func (r *ListingRepository) GetByID(ctx context.Context, category models.ListingCategory, id uuid.UUID) (*models.Listing, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	l, err := common.GetByID[models.Listing](ctx, r.db, table, id, apperror.ErrListingNotFound)
	if err != nil {
		return nil, err
	}
	l.Category = category
	return l, nil
}

// Update сохраняет изменения объявления владельца.
func (r *ListingRepository) Update(ctx context.Context, l *models.Listing) error {
	table, err := tableFor(l.Category)
	if err != nil {
		return err
	}

	query := `UPDATE ` + table + ` SET
			title = :title, description = :description, price = :price, price_type = :price_type,
			city = :city, region = :region, contact_name = :contact_name,
			contact_phone = :contact_phone, contact_email = :contact_email,
			images = :images, details = :details, status = :status, updated_at = NOW()
		WHERE id = :id AND user_id = :user_id`

	res, err := sqlx.NamedExecContext(ctx, r.db, query, l)
	if err != nil {
		return fmt.Errorf("listing repository: update %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("listing repository: update rows affected %w", err)
	}
	if n == 0 {
		return apperror.ErrListingNotFound
	}
	return nil
}

// Delete удаляет объявление владельца.
func (r *ListingRepository) Delete(ctx context.Context, category models.ListingCategory, id, userID uuid.UUID) error {
	table, err := tableFor(category)
	if err != nil {
		return err
	}
	return common.DeleteOwned(ctx, r.db, table, "user_id", id, userID, apperror.ErrListingNotFound)
}

// ListPublished возвращает опубликованные объявления категории.
func (r *ListingRepository) ListPublished(ctx context.Context, category models.ListingCategory, f models.ListingFilter) ([]models.Listing, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}

	var p common.Placeholders
	p.Add("status = ?", models.ListingStatusPublished)
	if f.Query != "" {
		p.Add("(title ILIKE ? OR description ILIKE ?)", "%"+common.EscapeLike(f.Query)+"%")
	}
	if f.City != "" {
		p.Add("city ILIKE ?", common.EscapeLike(f.City))
	}
	if f.MinPrice != nil {
		p.Add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		p.Add("price <= ?", *f.MaxPrice)
	}

	query := "SELECT * FROM " + table + p.Where() + " ORDER BY " + listingOrder(f.Sort)
	query += " LIMIT " + p.Arg(f.Limit) + " OFFSET " + p.Arg(f.Offset)

	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, p.Args()...); err != nil {
		return nil, fmt.Errorf("listing repository: list %w", err)
	}
	for i := range listings {
		listings[i].Category = category
	}
	return listings, nil
}

// ListByUser возвращает объявления пользователя во всех категориях, новые первыми.
func (r *ListingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Listing, error) {
	all := []models.Listing{}
	for _, category := range models.ListingCategories {
		table, _ := category.Table()
		var listings []models.Listing
		if err := r.db.SelectContext(ctx, &listings, `SELECT * FROM `+table+` WHERE user_id = $1 ORDER BY created_at DESC`, userID); err != nil {
			return nil, fmt.Errorf("listing repository: list by user %s %w", table, err)
		}
		for i := range listings {
			listings[i].Category = category
		}
		all = append(all, listings...)
	}
	return all, nil
}

func listingOrder(sort string) string {
	switch sort {
	case "price_asc":
		return "price ASC NULLS LAST, created_at DESC"
	case "price_desc":
		return "price DESC NULLS LAST, created_at DESC"
	default:
		return "created_at DESC"
	}
}
