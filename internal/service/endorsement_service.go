package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/classifieds-backend/internal/goroutine"
	"github.com/ignatzorin/classifieds-backend/internal/logger"
	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
	"github.com/ignatzorin/classifieds-backend/internal/repository/common"
)

// ViewWindow окно, за которое считаются просмотры профиля в сводке.
const ViewWindow = 30 * 24 * time.Hour

// EndorsementRepository описывает хранилище простых и категорийных одобрений.
type EndorsementRepository interface {
	GetEndorsement(ctx context.Context, businessID, userID uuid.UUID) (*models.Endorsement, error)
	CreateEndorsement(ctx context.Context, e *models.Endorsement) error
	DeleteEndorsement(ctx context.Context, id uuid.UUID) error
	ListEndorsements(ctx context.Context, businessID uuid.UUID) ([]models.Endorsement, error)
	GetCategoryEndorsement(ctx context.Context, businessID, userID uuid.UUID, category string) (*models.CategoryEndorsement, error)
	CreateCategoryEndorsement(ctx context.Context, e *models.CategoryEndorsement) error
	DeleteCategoryEndorsement(ctx context.Context, id uuid.UUID) error
	ListCategoryEndorsements(ctx context.Context, businessID uuid.UUID) ([]models.CategoryEndorsement, error)
}

// RecommendationRepository описывает хранилище рекомендаций.
type RecommendationRepository interface {
	GetByBusinessAndUser(ctx context.Context, businessID, userID uuid.UUID) (*models.Recommendation, error)
	Create(ctx context.Context, rec *models.Recommendation) error
	UpdateDetails(ctx context.Context, rec *models.Recommendation) error
	Delete(ctx context.Context, businessID, userID uuid.UUID) (bool, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Recommendation, error)
}

// ProfileViewCounter считает просмотры профиля бизнеса.
type ProfileViewCounter interface {
	CountSince(ctx context.Context, businessID uuid.UUID, since time.Time) (int, error)
}

// BusinessLookup находит бизнес по ID.
type BusinessLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
}

// ProfileLookup находит профиль пользователя, nil если профиля нет.
type ProfileLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// OwnerNotifier доставляет уведомление владельцу бизнеса.
type OwnerNotifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind string, data interface{}) error
}

// PageRevalidator сбрасывает закешированную страницу бизнеса.
type PageRevalidator interface {
	RevalidateBusiness(ctx context.Context, businessID uuid.UUID)
}

// ToggleResult результат переключения одобрения.
type ToggleResult struct {
	Endorsed bool `json:"endorsed"`
}

// RecommendationResult результат создания или обновления рекомендации.
type RecommendationResult struct {
	Recommendation *models.Recommendation `json:"recommendation"`
	Created        bool                   `json:"created"`
}

// EndorsementService собирает сводку доверия и изменяет одобрения/рекомендации.
type EndorsementService struct {
	endorsements    EndorsementRepository
	recommendations RecommendationRepository
	views           ProfileViewCounter
	businesses      BusinessLookup
	profiles        ProfileLookup
	notifier        OwnerNotifier
	pages           PageRevalidator
	background      *goroutine.RecoveryHandler
	now             func() time.Time
}

// NewEndorsementService создаёт сервис. notifier и pages могут быть nil.
func NewEndorsementService(
	endorsements EndorsementRepository,
	recommendations RecommendationRepository,
	views ProfileViewCounter,
	businesses BusinessLookup,
	profiles ProfileLookup,
	notifier OwnerNotifier,
	pages PageRevalidator,
	background *goroutine.RecoveryHandler,
) *EndorsementService {
	if background == nil {
		background = goroutine.NewRecoveryHandler(logger.Recovery())
	}
	return &EndorsementService{
		endorsements:    endorsements,
		recommendations: recommendations,
		views:           views,
		businesses:      businesses,
		profiles:        profiles,
		notifier:        notifier,
		pages:           pages,
		background:      background,
		now:             time.Now,
	}
}

// GetTrustSummary собирает сводку доверия. viewerID может быть nil для анонимного посетителя.
func (s *EndorsementService) GetTrustSummary(ctx context.Context, businessID uuid.UUID, viewerID *uuid.UUID) (*models.TrustSummary, error) {
	if _, err := s.businesses.GetByID(ctx, businessID); err != nil {
		return nil, common.MapPgError(err)
	}

	endorsements, err := s.endorsements.ListEndorsements(ctx, businessID)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	categories, err := s.endorsements.ListCategoryEndorsements(ctx, businessID)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	recommendations, err := s.recommendations.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	views, err := s.views.CountSince(ctx, businessID, s.now().Add(-ViewWindow))
	if err != nil {
		return nil, common.MapPgError(err)
	}

	summary := SummarizeTrust(TrustInput{
		BusinessID:           businessID,
		ViewerID:             viewerID,
		Endorsements:         endorsements,
		CategoryEndorsements: categories,
		Recommendations:      recommendations,
		ViewsLast30Days:      views,
	})
	return &summary, nil
}

// ToggleEndorsement ставит или снимает одобрение пользователя.
func (s *EndorsementService) ToggleEndorsement(ctx context.Context, actor *models.Actor, businessID uuid.UUID) (*ToggleResult, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, common.MapPgError(err)
	}

	existing, err := s.endorsements.GetEndorsement(ctx, businessID, actor.ID)
	if err != nil {
		return nil, common.MapPgError(err)
	}

	if existing != nil {
		if err := s.endorsements.DeleteEndorsement(ctx, existing.ID); err != nil {
			return nil, common.MapPgError(err)
		}
		s.revalidate(ctx, businessID)
		return &ToggleResult{Endorsed: false}, nil
	}

	endorsement := &models.Endorsement{BusinessID: businessID, UserID: actor.ID}
	if err := s.endorsements.CreateEndorsement(ctx, endorsement); err != nil {
		return nil, common.MapPgError(err)
	}

	s.notifyOwner(ctx, business, actor, models.NotificationEndorsement, map[string]interface{}{
		"business_id":   business.ID,
		"business_name": business.Name,
		"user_id":       actor.ID,
	})
	s.revalidate(ctx, businessID)
	return &ToggleResult{Endorsed: true}, nil
}

// ToggleCategoryEndorsement ставит или снимает одобрение в категории.
func (s *EndorsementService) ToggleCategoryEndorsement(ctx context.Context, actor *models.Actor, businessID uuid.UUID, category string) (*ToggleResult, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	if err := ValidateCategory(category); err != nil {
		return nil, err
	}
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, common.MapPgError(err)
	}

	existing, err := s.endorsements.GetCategoryEndorsement(ctx, businessID, actor.ID, category)
	if err != nil {
		return nil, common.MapPgError(err)
	}

	if existing != nil {
		if err := s.endorsements.DeleteCategoryEndorsement(ctx, existing.ID); err != nil {
			return nil, common.MapPgError(err)
		}
		s.revalidate(ctx, businessID)
		return &ToggleResult{Endorsed: false}, nil
	}

	endorsement := &models.CategoryEndorsement{BusinessID: businessID, UserID: actor.ID, Category: category}
	if err := s.endorsements.CreateCategoryEndorsement(ctx, endorsement); err != nil {
		return nil, common.MapPgError(err)
	}

	s.notifyOwner(ctx, business, actor, models.NotificationCategoryEndorsement, map[string]interface{}{
		"business_id":   business.ID,
		"business_name": business.Name,
		"user_id":       actor.ID,
		"category":      category,
	})
	s.revalidate(ctx, businessID)
	return &ToggleResult{Endorsed: true}, nil
}

// UpsertRecommendation создаёт рекомендацию либо обновляет тип отношений и теги существующей.
func (s *EndorsementService) UpsertRecommendation(ctx context.Context, actor *models.Actor, businessID uuid.UUID, relationshipType string, tags []string) (*RecommendationResult, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	cleanTags, err := ValidateRecommendation(relationshipType, tags)
	if err != nil {
		return nil, err
	}
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, common.MapPgError(err)
	}

	existing, err := s.recommendations.GetByBusinessAndUser(ctx, businessID, actor.ID)
	if err != nil {
		return nil, common.MapPgError(err)
	}

	if existing != nil {
		existing.RelationshipType = relationshipType
		existing.Tags = cleanTags
		if err := s.recommendations.UpdateDetails(ctx, existing); err != nil {
			return nil, common.MapPgError(err)
		}
		s.revalidate(ctx, businessID)
		return &RecommendationResult{Recommendation: existing, Created: false}, nil
	}

	profile, err := s.profiles.GetByID(ctx, actor.ID)
	if err != nil {
		// Имя не критично: подпишем рекомендацию по email.
		logger.Log.WithFields(logrus.Fields{"user_id": actor.ID, "error": err}).Warn("endorsement service: профиль не загружен")
		profile = nil
	}

	rec := &models.Recommendation{
		BusinessID:       businessID,
		UserID:           actor.ID,
		RelationshipType: relationshipType,
		Tags:             cleanTags,
		RecommenderName:  DisplayName(profile, actor.Email),
	}
	if err := s.recommendations.Create(ctx, rec); err != nil {
		return nil, common.MapPgError(err)
	}

	s.notifyOwner(ctx, business, actor, models.NotificationRecommendation, map[string]interface{}{
		"business_id":       business.ID,
		"business_name":     business.Name,
		"user_id":           actor.ID,
		"recommender_name":  rec.RecommenderName,
		"relationship_type": relationshipType,
		"tags":              cleanTags,
	})
	s.revalidate(ctx, businessID)
	return &RecommendationResult{Recommendation: rec, Created: true}, nil
}

// RemoveRecommendation удаляет рекомендацию пользователя.
func (s *EndorsementService) RemoveRecommendation(ctx context.Context, actor *models.Actor, businessID uuid.UUID) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	removed, err := s.recommendations.Delete(ctx, businessID, actor.ID)
	if err != nil {
		return common.MapPgError(err)
	}
	if !removed {
		return apperror.New(apperror.ErrCodeNotFound, "рекомендация не найдена")
	}
	s.revalidate(ctx, businessID)
	return nil
}

// Wait дожидается фоновых уведомлений.
func (s *EndorsementService) Wait() {
	s.background.Wait()
}

// notifyOwner отправляет уведомление владельцу в фоне. Ошибка только логируется.
func (s *EndorsementService) notifyOwner(ctx context.Context, business *models.Business, actor *models.Actor, kind string, data interface{}) {
	if s.notifier == nil || business.OwnerID == actor.ID {
		return
	}
	ownerID := business.OwnerID
	s.background.SafeGoWithContext(ctx, func(ctx context.Context) {
		if err := s.notifier.Notify(ctx, ownerID, kind, data); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"business_id": business.ID,
				"user_id":     ownerID,
				"type":        kind,
				"error":       err,
			}).Warn("endorsement service: не удалось отправить уведомление")
		}
	})
}

func (s *EndorsementService) revalidate(ctx context.Context, businessID uuid.UUID) {
	if s.pages != nil {
		s.pages.RevalidateBusiness(ctx, businessID)
	}
}
