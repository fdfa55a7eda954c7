package service

import (
	"context"
	"strings"

	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
	"github.com/ignatzorin/classifieds-backend/internal/repository/common"
	"github.com/ignatzorin/classifieds-backend/internal/validation"
)

// ProfileRepository описывает хранилище профилей.
type ProfileRepository interface {
	ProfileLookup
	Upsert(ctx context.Context, p *models.Profile) error
}

// ProfileService управляет публичным профилем пользователя.
type ProfileService struct {
	repo ProfileRepository
}

// NewProfileService создаёт сервис профилей.
func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// GetProfile возвращает профиль пользователя. Если профиль ещё не заполнен,
// отдаётся заготовка с email из токена.
func (s *ProfileService) GetProfile(ctx context.Context, actor *models.Actor) (*models.Profile, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	p, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	if p == nil {
		p = &models.Profile{ID: actor.ID}
		if actor.Email != "" {
			email := actor.Email
			p.Email = &email
		}
	}
	return p, nil
}

// UpdateProfile создаёт или обновляет профиль. Email всегда берётся из токена.
func (s *ProfileService) UpdateProfile(ctx context.Context, actor *models.Actor, input *models.Profile) (*models.Profile, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}

	p := &models.Profile{
		ID:        actor.ID,
		FirstName: trimmed(input.FirstName),
		LastName:  trimmed(input.LastName),
		FullName:  trimmed(input.FullName),
		Phone:     trimmed(input.Phone),
		AvatarURL: trimmed(input.AvatarURL),
	}
	if actor.Email != "" {
		email := actor.Email
		p.Email = &email
	}

	checks := []error{
		validation.ValidateOptionalText("имя", p.FirstName, validation.MaxNameLength),
		validation.ValidateOptionalText("фамилия", p.LastName, validation.MaxNameLength),
		validation.ValidateOptionalText("полное имя", p.FullName, validation.MaxNameLength),
		validation.ValidatePhone("телефон", p.Phone),
		validation.ValidateExternalLink("аватар", p.AvatarURL),
	}
	for _, err := range checks {
		if err != nil {
			return nil, apperror.Validation("%s", err.Error())
		}
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, common.MapPgError(err)
	}
	return p, nil
}

// trimmed обрезает пробелы, пустую строку превращает в nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
