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

const notificationColumns = `id, user_id, type, payload, is_read, created_at`

// NotificationRepository хранит уведомления владельцев компаний.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository создаёт экземпляр репозитория.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет уведомление, заполняя id и created_at.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	const query = `
		INSERT INTO notifications (user_id, type, payload, is_read)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	payload := n.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if err := r.db.QueryRowxContext(ctx, query, n.UserID, n.Type, payload, n.IsRead).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("notification repository: create %w", err)
	}
	return nil
}

// GetByID возвращает уведомление по идентификатору.
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n, err := common.GetByID[models.Notification](ctx, r.db, "notifications", id, apperror.ErrNotificationNotFound)
	if err != nil {
		return nil, fmt.Errorf("notification repository: get by id %w", err)
	}
	return n, nil
}

// List возвращает уведомления пользователя, новые первыми.
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	var where common.Placeholders
	where.Add("user_id = ?", userID)
	if unreadOnly {
		where.Add("is_read = ?", false)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications` + where.Where() + ` ORDER BY created_at DESC`
	if limit > 0 {
		query += " LIMIT " + where.Arg(limit)
	}
	if offset > 0 {
		query += " OFFSET " + where.Arg(offset)
	}

	items := []models.Notification{}
	if err := r.db.SelectContext(ctx, &items, query, where.Args()...); err != nil {
		return nil, fmt.Errorf("notification repository: list %w", err)
	}
	return items, nil
}

// MarkAsRead отмечает уведомление пользователя прочитанным.
// Чужое или отсутствующее уведомление даёт ErrNotificationNotFound.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("notification repository: mark as read %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("notification repository: mark as read %w", err)
	}
	if n == 0 {
		return apperror.ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead отмечает прочитанными все уведомления пользователя.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID); err != nil {
		return fmt.Errorf("notification repository: mark all as read %w", err)
	}
	return nil
}

// Delete удаляет уведомление пользователя.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := common.DeleteOwned(ctx, r.db, "notifications", "user_id", id, userID, apperror.ErrNotificationNotFound); err != nil {
		return fmt.Errorf("notification repository: delete %w", err)
	}
	return nil
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID); err != nil {
		return 0, fmt.Errorf("notification repository: count unread %w", err)
	}
	return count, nil
}
