package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/classifieds-backend/internal/logger"
	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/repository/common"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationPublisher доставляет событие подключённым клиентам (WebSocket hub).
type NotificationPublisher interface {
	Publish(userID uuid.UUID, event string, data any) error
}

// NotificationService содержит бизнес-логику работы с уведомлениями.
type NotificationService struct {
	repo      NotificationRepository
	publisher NotificationPublisher
}

// NewNotificationService создаёт новый сервис уведомлений. publisher может быть nil.
func NewNotificationService(repo NotificationRepository, publisher NotificationPublisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

// Notify сохраняет уведомление и отправляет его по WebSocket.
// Ошибка живой доставки не считается ошибкой: запись уже в БД.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, kind string, data interface{}) error {
	notification, err := s.CreateNotification(ctx, userID, kind, data)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(userID, kind, notification); err != nil {
			logger.Log.WithFields(logrus.Fields{"user_id": userID, "type": kind, "error": err}).Warn("notification service: live delivery failed")
		}
	}
	return nil
}

// CreateNotification создаёт новое уведомление.
func (s *NotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, kind string, data interface{}) (*models.Notification, error) {
	payloadBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("notification service: marshal payload %w", err)
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Payload: payloadBytes,
		IsRead:  false,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, common.MapPgError(err)
	}

	return notification, nil
}

// ListNotifications возвращает список уведомлений пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.List(ctx, userID, limit, offset, unreadOnly)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	return items, nil
}

// MarkAsRead отмечает уведомление пользователя как прочитанное.
// Чужое уведомление неотличимо от отсутствующего.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return common.MapPgError(s.repo.MarkAsRead(ctx, id, userID))
}

// MarkAllAsRead отмечает все уведомления пользователя как прочитанные.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return common.MapPgError(s.repo.MarkAllAsRead(ctx, userID))
}

// DeleteNotification удаляет уведомление пользователя.
func (s *NotificationService) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {
	return common.MapPgError(s.repo.Delete(ctx, id, userID))
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, common.MapPgError(err)
	}
	return n, nil
}
