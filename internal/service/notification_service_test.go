package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/classifieds-backend/internal/models"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	if args.Error(0) == nil {
		n.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if n, ok := args.Get(0).(*models.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset, unreadOnly)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) Publish(userID uuid.UUID, event string, data any) error {
	p.events = append(p.events, event)
	return p.err
}

func TestNotificationService_Notify(t *testing.T) {
	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	publisher := &recordingPublisher{}
	svc := NewNotificationService(repo, publisher)

	owner := uuid.New()
	err := svc.Notify(context.Background(), owner, models.NotificationEndorsement, map[string]string{"business_name": "Acme"})
	require.NoError(t, err)

	saved := repo.Calls[0].Arguments.Get(1).(*models.Notification)
	assert.Equal(t, owner, saved.UserID)
	assert.Equal(t, models.NotificationEndorsement, saved.Type)
	assert.False(t, saved.IsRead)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(saved.Payload, &payload))
	assert.Equal(t, "Acme", payload["business_name"])
	assert.Equal(t, []string{models.NotificationEndorsement}, publisher.events)
}

func TestNotificationService_NotifyPublishFailureIgnored(t *testing.T) {
	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := NewNotificationService(repo, &recordingPublisher{err: errors.New("no clients")})

	assert.NoError(t, svc.Notify(context.Background(), uuid.New(), models.NotificationRecommendation, nil))
}

func TestNotificationService_NotifyStoreFailure(t *testing.T) {
	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	publisher := &recordingPublisher{}
	svc := NewNotificationService(repo, publisher)

	assert.Error(t, svc.Notify(context.Background(), uuid.New(), models.NotificationRecommendation, nil))
	assert.Empty(t, publisher.events)
}

func TestNotificationService_ListClampsPagination(t *testing.T) {
	repo := new(mockNotificationRepo)
	userID := uuid.New()
	repo.On("List", mock.Anything, userID, 20, 0, true).Return([]models.Notification{}, nil)
	svc := NewNotificationService(repo, nil)

	items, err := svc.ListNotifications(context.Background(), userID, 1000, -5, true)
	require.NoError(t, err)
	assert.Empty(t, items)
	repo.AssertExpectations(t)
}

func TestNotificationService_CountUnread(t *testing.T) {
	repo := new(mockNotificationRepo)
	userID := uuid.New()
	repo.On("CountUnread", mock.Anything, userID).Return(3, nil)
	svc := NewNotificationService(repo, nil)

	n, err := svc.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
