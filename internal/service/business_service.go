package service

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/ignatzorin/classifieds-backend/internal/goroutine"
	"github.com/ignatzorin/classifieds-backend/internal/logger"
	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
	"github.com/ignatzorin/classifieds-backend/internal/repository/common"
	"github.com/ignatzorin/classifieds-backend/internal/validation"
)

// BusinessRepository описывает хранилище компаний.
type BusinessRepository interface {
	Create(ctx context.Context, b *models.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	Update(ctx context.Context, b *models.Business) error
	UpdateLocation(ctx context.Context, id, ownerID uuid.UUID, lat, lng *float64, status string) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	List(ctx context.Context, f models.BusinessFilter) ([]models.Business, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Business, error)
	ListGeocoded(ctx context.Context, businessType string) ([]models.Business, error)
}

// ProfileViewRecorder сохраняет просмотры профиля.
type ProfileViewRecorder interface {
	Create(ctx context.Context, v *models.ProfileView) error
}

// TrustSummarizer собирает сводку доверия для страницы бизнеса.
type TrustSummarizer interface {
	GetTrustSummary(ctx context.Context, businessID uuid.UUID, viewerID *uuid.UUID) (*models.TrustSummary, error)
}

// BusinessDetail содержимое страницы бизнеса.
type BusinessDetail struct {
	Business *models.Business     `json:"business"`
	Trust    *models.TrustSummary `json:"trust"`
}

// BusinessService CRUD компаний, страница бизнеса и учёт просмотров.
type BusinessService struct {
	repo       BusinessRepository
	views      ProfileViewRecorder
	trust      TrustSummarizer
	pages      *PageCache
	background *goroutine.RecoveryHandler
	ipKey      []byte
}

// NewBusinessService создаёт сервис. pages может быть nil, тогда страницы не кешируются.
// ipKey ключ blake2b для хеширования IP посетителей.
func NewBusinessService(repo BusinessRepository, views ProfileViewRecorder, trust TrustSummarizer, pages *PageCache, background *goroutine.RecoveryHandler, ipKey string) *BusinessService {
	if background == nil {
		background = goroutine.NewRecoveryHandler(logger.Recovery())
	}
	key := []byte(ipKey)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	return &BusinessService{
		repo:       repo,
		views:      views,
		trust:      trust,
		pages:      pages,
		background: background,
		ipKey:      key,
	}
}

// CreateBusiness создаёт компанию от имени пользователя.
func (s *BusinessService) CreateBusiness(ctx context.Context, actor *models.Actor, b *models.Business) (*models.Business, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	normalizeBusiness(b)
	if err := validateBusiness(b); err != nil {
		return nil, err
	}

	b.OwnerID = actor.ID
	b.GeocodingStatus = geocodingStatusFor(b)

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, common.MapPgError(err)
	}

	s.revalidate(ctx, b.ID)
	return b, nil
}

// GetBusiness возвращает компанию.
func (s *BusinessService) GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	return b, nil
}

// GetBusinessDetail собирает страницу бизнеса. Анонимная версия берётся из кеша.
func (s *BusinessService) GetBusinessDetail(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*BusinessDetail, error) {
	cacheable := viewerID == nil && s.pages != nil
	key := BusinessPageCacheKey(id)

	if cacheable {
		var cached BusinessDetail
		if s.pages.GetJSON(ctx, key, &cached) {
			return &cached, nil
		}
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	trust, err := s.trust.GetTrustSummary(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	detail := &BusinessDetail{Business: b, Trust: trust}
	if cacheable {
		s.pages.SetJSON(ctx, key, detail)
	}
	return detail, nil
}

// ListBusinesses возвращает публичный список компаний.
func (s *BusinessService) ListBusinesses(ctx context.Context, f models.BusinessFilter) ([]models.Business, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Query = strings.TrimSpace(f.Query)

	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	return items, nil
}

// ListMyBusinesses возвращает компании пользователя.
func (s *BusinessService) ListMyBusinesses(ctx context.Context, actor *models.Actor) ([]models.Business, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	items, err := s.repo.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	return items, nil
}

// UpdateBusiness заменяет редактируемые поля компании. Доступно только владельцу.
func (s *BusinessService) UpdateBusiness(ctx context.Context, actor *models.Actor, id uuid.UUID, input *models.Business) (*models.Business, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	if existing.OwnerID != actor.ID {
		return nil, apperror.ErrForbidden
	}

	normalizeBusiness(input)
	if err := validateBusiness(input); err != nil {
		return nil, err
	}

	input.ID = existing.ID
	input.OwnerID = existing.OwnerID
	input.CreatedAt = existing.CreatedAt
	input.GeocodingStatus = geocodingStatusFor(input)

	if err := s.repo.Update(ctx, input); err != nil {
		return nil, common.MapPgError(err)
	}

	s.revalidate(ctx, id)
	return input, nil
}

// UpdateLocation сохраняет результат геокодирования адреса.
func (s *BusinessService) UpdateLocation(ctx context.Context, actor *models.Actor, id uuid.UUID, lat, lng *float64, status string) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	if _, ok := models.ValidGeocodingStatuses[status]; !ok {
		return apperror.Validation("недопустимый статус геокодирования: %s", status)
	}
	if err := validation.ValidateCoordinates(lat, lng); err != nil {
		return apperror.Validation("%s", err.Error())
	}
	switch status {
	case models.GeocodingSuccess:
		if lat == nil {
			return apperror.Validation("для статуса success нужны координаты")
		}
	default:
		// Неуспешное или ожидающее геокодирование не хранит координаты
		lat, lng = nil, nil
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return common.MapPgError(err)
	}
	if existing.OwnerID != actor.ID {
		return apperror.ErrForbidden
	}

	if err := s.repo.UpdateLocation(ctx, id, actor.ID, lat, lng, status); err != nil {
		return common.MapPgError(err)
	}

	s.revalidate(ctx, id)
	return nil
}

// DeleteBusiness удаляет компанию владельца.
func (s *BusinessService) DeleteBusiness(ctx context.Context, actor *models.Actor, id uuid.UUID) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return common.MapPgError(err)
	}
	if existing.OwnerID != actor.ID {
		return apperror.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id, actor.ID); err != nil {
		return common.MapPgError(err)
	}

	s.revalidate(ctx, id)
	return nil
}

// TrackView записывает просмотр профиля в фоне. Владелец свои просмотры не накручивает.
func (s *BusinessService) TrackView(ctx context.Context, business *models.Business, viewerID *uuid.UUID, ip string) {
	if s.views == nil || business == nil {
		return
	}
	if viewerID != nil && *viewerID == business.OwnerID {
		return
	}

	view := &models.ProfileView{BusinessID: business.ID, ViewerID: viewerID}
	if ip != "" {
		hash := s.HashIP(ip)
		view.IPHash = &hash
	}

	s.background.SafeGoWithContext(ctx, func(ctx context.Context) {
		if err := s.views.Create(ctx, view); err != nil {
			logger.Log.WithFields(logrus.Fields{"business_id": view.BusinessID, "error": err}).Warn("business service: не удалось сохранить просмотр")
		}
	})
}

// HashIP возвращает keyed blake2b хеш IP адреса, сам адрес не хранится.
func (s *BusinessService) HashIP(ip string) string {
	h, err := blake2b.New256(s.ipKey)
	if err != nil {
		// Ключ уже обрезан до blake2b.Size, ошибка невозможна
		sum := blake2b.Sum256([]byte(ip))
		return hex.EncodeToString(sum[:])
	}
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil))
}

// Wait дожидается фоновых записей просмотров.
func (s *BusinessService) Wait() {
	s.background.Wait()
}

func (s *BusinessService) revalidate(ctx context.Context, id uuid.UUID) {
	if s.pages == nil {
		return
	}
	s.pages.RevalidateBusiness(ctx, id)
	s.pages.RevalidateMap(ctx)
}

// geocodingStatusFor адрес с координатами считается геокодированным, иначе ждёт геокодирования.
func geocodingStatusFor(b *models.Business) string {
	if b.Latitude != nil && b.Longitude != nil {
		return models.GeocodingSuccess
	}
	return models.GeocodingPending
}

func normalizeBusiness(b *models.Business) {
	b.Name = strings.TrimSpace(b.Name)
	b.BusinessType = strings.TrimSpace(b.BusinessType)
	for _, field := range []**string{&b.City, &b.Region, &b.Email, &b.Website, &b.Suburb, &b.StreetAddress} {
		if *field == nil {
			continue
		}
		v := strings.TrimSpace(**field)
		if v == "" {
			*field = nil
			continue
		}
		*field = &v
	}
	if b.Gallery == nil {
		b.Gallery = []string{}
	}
	if b.Branches == nil {
		b.Branches = models.Branches{}
	}
}

func validateBusiness(b *models.Business) error {
	if err := validation.ValidateNonEmpty("название", b.Name); err != nil {
		return apperror.Validation("%s", err.Error())
	}
	if err := validation.ValidateLength("название", b.Name, validation.MinBusinessNameLength, validation.MaxBusinessNameLength); err != nil {
		return apperror.Validation("%s", err.Error())
	}
	if err := validation.ValidateNonEmpty("тип бизнеса", b.BusinessType); err != nil {
		return apperror.Validation("%s", err.Error())
	}

	checks := []error{
		validation.ValidateOptionalText("описание", b.Description, validation.MaxDescriptionLength),
		validation.ValidateOptionalEmail(b.Email),
		validation.ValidatePhone("телефон", b.Phone),
		validation.ValidatePhone("мобильный телефон", b.Mobile),
		validation.ValidateExternalLink("ссылка на сайт", b.Website),
		validation.ValidateExternalLink("ссылка на Facebook", b.FacebookURL),
		validation.ValidateExternalLink("ссылка на LinkedIn", b.LinkedInURL),
		validation.ValidateExternalLink("ссылка на Instagram", b.InstagramURL),
		validation.ValidateCoordinates(b.Latitude, b.Longitude),
		validation.ValidateImages(b.Gallery),
	}
	for _, err := range checks {
		if err != nil {
			return apperror.Validation("%s", err.Error())
		}
	}

	for i, branch := range b.Branches {
		if strings.TrimSpace(branch.City) == "" && strings.TrimSpace(branch.StreetAddress) == "" {
			return apperror.Validation("филиал %d: укажите город или адрес", i+1)
		}
	}

	for day := range b.WorkingHours {
		if _, ok := weekdays[strings.ToLower(day)]; !ok {
			return apperror.Validation("неизвестный день недели: %s", day)
		}
	}
	return nil
}

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {}, "friday": {}, "saturday": {}, "sunday": {},
}
