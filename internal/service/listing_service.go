package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
	"github.com/ignatzorin/classifieds-backend/internal/repository/common"
	"github.com/ignatzorin/classifieds-backend/internal/validation"
)

// ListingRepository описывает хранилище объявлений всех категорий.
type ListingRepository interface {
	Create(ctx context.Context, l *models.Listing) error
	GetByID(ctx context.Context, category models.ListingCategory, id uuid.UUID) (*models.Listing, error)
	Update(ctx context.Context, l *models.Listing) error
	Delete(ctx context.Context, category models.ListingCategory, id, userID uuid.UUID) error
	ListPublished(ctx context.Context, category models.ListingCategory, f models.ListingFilter) ([]models.Listing, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Listing, error)
}

// ListingService ведёт объявления по шагам: черновик, публикация, архив.
type ListingService struct {
	repo ListingRepository
}

// NewListingService создаёт сервис объявлений.
func NewListingService(repo ListingRepository) *ListingService {
	return &ListingService{repo: repo}
}

// CreateDraft сохраняет черновик. Из обязательного только категория и заголовок.
func (s *ListingService) CreateDraft(ctx context.Context, actor *models.Actor, l *models.Listing) (*models.Listing, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	if err := validateListingCategory(l.Category); err != nil {
		return nil, err
	}
	normalizeListing(l)
	if err := validateListingFields(l); err != nil {
		return nil, err
	}

	l.UserID = actor.ID
	l.Status = models.ListingStatusDraft

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, common.MapPgError(err)
	}
	return l, nil
}

// GetListing возвращает объявление. Неопубликованные видит только автор.
func (s *ListingService) GetListing(ctx context.Context, category models.ListingCategory, id uuid.UUID, viewerID *uuid.UUID) (*models.Listing, error) {
	if err := validateListingCategory(category); err != nil {
		return nil, err
	}
	l, err := s.repo.GetByID(ctx, category, id)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	if l.Status != models.ListingStatusPublished && (viewerID == nil || *viewerID != l.UserID) {
		return nil, apperror.ErrListingNotFound
	}
	return l, nil
}

// UpdateListing заменяет поля объявления автора, статус не меняется.
// Опубликованное объявление после правки должно остаться пригодным к публикации.
func (s *ListingService) UpdateListing(ctx context.Context, actor *models.Actor, category models.ListingCategory, id uuid.UUID, input *models.Listing) (*models.Listing, error) {
	existing, err := s.ownedListing(ctx, actor, category, id)
	if err != nil {
		return nil, err
	}

	normalizeListing(input)
	if err := validateListingFields(input); err != nil {
		return nil, err
	}

	input.ID = existing.ID
	input.Category = existing.Category
	input.UserID = existing.UserID
	input.Status = existing.Status
	input.CreatedAt = existing.CreatedAt

	if input.Status == models.ListingStatusPublished {
		if err := ValidateForPublish(input); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, input); err != nil {
		return nil, common.MapPgError(err)
	}
	return input, nil
}

// Publish проверяет заполненность объявления и публикует его.
func (s *ListingService) Publish(ctx context.Context, actor *models.Actor, category models.ListingCategory, id uuid.UUID) (*models.Listing, error) {
	l, err := s.ownedListing(ctx, actor, category, id)
	if err != nil {
		return nil, err
	}
	if l.Status == models.ListingStatusPublished {
		return l, nil
	}
	if err := ValidateForPublish(l); err != nil {
		return nil, err
	}
	return s.setStatus(ctx, l, models.ListingStatusPublished)
}

// Archive снимает объявление с публикации.
func (s *ListingService) Archive(ctx context.Context, actor *models.Actor, category models.ListingCategory, id uuid.UUID) (*models.Listing, error) {
	l, err := s.ownedListing(ctx, actor, category, id)
	if err != nil {
		return nil, err
	}
	if l.Status == models.ListingStatusArchived {
		return l, nil
	}
	return s.setStatus(ctx, l, models.ListingStatusArchived)
}

// DeleteListing удаляет объявление автора.
func (s *ListingService) DeleteListing(ctx context.Context, actor *models.Actor, category models.ListingCategory, id uuid.UUID) error {
	if _, err := s.ownedListing(ctx, actor, category, id); err != nil {
		return err
	}
	return common.MapPgError(s.repo.Delete(ctx, category, id, actor.ID))
}

// ListPublished возвращает опубликованные объявления категории.
func (s *ListingService) ListPublished(ctx context.Context, category models.ListingCategory, f models.ListingFilter) ([]models.Listing, error) {
	if err := validateListingCategory(category); err != nil {
		return nil, err
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, apperror.Validation("минимальная цена не может быть больше максимальной")
	}
	f.Query = strings.TrimSpace(f.Query)

	items, err := s.repo.ListPublished(ctx, category, f)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	return items, nil
}

// ListMyListings возвращает объявления пользователя во всех категориях, новые первыми.
func (s *ListingService) ListMyListings(ctx context.Context, actor *models.Actor) ([]models.Listing, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	items, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// ValidateForPublish проверяет общие поля и обязательные атрибуты категории.
func ValidateForPublish(l *models.Listing) error {
	missing := make([]string, 0)
	if strings.TrimSpace(l.Title) == "" {
		missing = append(missing, "title")
	}
	if isBlank(l.Description) {
		missing = append(missing, "description")
	}
	if isBlank(l.City) && isBlank(l.Region) {
		missing = append(missing, "city")
	}
	if isBlank(l.ContactPhone) && isBlank(l.ContactEmail) {
		missing = append(missing, "contact_phone/contact_email")
	}
	for _, key := range l.Category.RequiredDetails() {
		if !hasDetail(l.Details, key) {
			missing = append(missing, "details."+key)
		}
	}

	if len(missing) > 0 {
		return apperror.Validation("для публикации заполните: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *ListingService) ownedListing(ctx context.Context, actor *models.Actor, category models.ListingCategory, id uuid.UUID) (*models.Listing, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	if err := validateListingCategory(category); err != nil {
		return nil, err
	}
	l, err := s.repo.GetByID(ctx, category, id)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	if l.UserID != actor.ID {
		return nil, apperror.ErrForbidden
	}
	return l, nil
}

func (s *ListingService) setStatus(ctx context.Context, l *models.Listing, status string) (*models.Listing, error) {
	l.Status = status
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, common.MapPgError(err)
	}
	return l, nil
}

func validateListingCategory(category models.ListingCategory) error {
	if _, ok := category.Table(); !ok {
		return apperror.Validation("неизвестная категория объявления: %s", category)
	}
	return nil
}

func normalizeListing(l *models.Listing) {
	l.Title = strings.TrimSpace(l.Title)
	if l.Images == nil {
		l.Images = []string{}
	}
	if l.Details == nil {
		l.Details = models.Details{}
	}
}

func validateListingFields(l *models.Listing) error {
	if err := validation.ValidateLength("заголовок", l.Title, validation.MinListingTitleLength, validation.MaxListingTitleLength); err != nil {
		return apperror.Validation("%s", err.Error())
	}
	checks := []error{
		validation.ValidateOptionalText("описание", l.Description, validation.MaxDescriptionLength),
		validation.ValidatePrice(l.Price),
		validation.ValidateOptionalEmail(l.ContactEmail),
		validation.ValidatePhone("контактный телефон", l.ContactPhone),
		validation.ValidateOptionalText("контактное лицо", l.ContactName, validation.MaxNameLength),
		validation.ValidateImages(l.Images),
	}
	for _, err := range checks {
		if err != nil {
			return apperror.Validation("%s", err.Error())
		}
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func hasDetail(details models.Details, key string) bool {
	v, ok := details[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return strings.TrimSpace(fmt.Sprint(v)) != ""
}
