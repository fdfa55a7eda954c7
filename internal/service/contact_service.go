package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/classifieds-backend/internal/logger"
	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
	"github.com/ignatzorin/classifieds-backend/internal/repository/common"
	"github.com/ignatzorin/classifieds-backend/internal/validation"
)

// ContactInput обращение посетителя к компании.
type ContactInput struct {
	BusinessID uuid.UUID
	Message    string
	Phone      string
	Company    string
}

// ContactService передаёт обращения посетителей владельцам компаний.
type ContactService struct {
	businesses BusinessLookup
	profiles   ProfileLookup
	notifier   OwnerNotifier
	emailer    Emailer
}

// NewContactService создаёт сервис обращений.
func NewContactService(businesses BusinessLookup, profiles ProfileLookup, notifier OwnerNotifier, emailer Emailer) *ContactService {
	if emailer == nil {
		emailer = NoopEmailer{}
	}
	return &ContactService{businesses: businesses, profiles: profiles, notifier: notifier, emailer: emailer}
}

// ContactBusiness проверяет обращение, отправляет письмо на адрес компании
// (ответ уходит отправителю) и создаёт уведомление владельцу.
func (s *ContactService) ContactBusiness(ctx context.Context, actor *models.Actor, in ContactInput) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}

	in.Message = strings.TrimSpace(in.Message)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Company = strings.TrimSpace(in.Company)
	if err := validation.ValidateContactMessage(in.Message); err != nil {
		return apperror.Validation("%s", err.Error())
	}
	if in.Phone != "" {
		if err := validation.ValidatePhone("телефон", &in.Phone); err != nil {
			return apperror.Validation("%s", err.Error())
		}
	}
	if err := validation.ValidateOptionalText("компания", &in.Company, validation.MaxNameLength); err != nil {
		return apperror.Validation("%s", err.Error())
	}

	business, err := s.businesses.GetByID(ctx, in.BusinessID)
	if err != nil {
		return common.MapPgError(err)
	}

	profile, err := s.profiles.GetByID(ctx, actor.ID)
	if err != nil {
		// Имя отправителя не обязательно, обращение всё равно доставляем.
		logger.Log.WithFields(logrus.Fields{"user_id": actor.ID, "error": err}).Warn("contact service: profile lookup failed")
		profile = nil
	}
	senderName := DisplayName(profile, actor.Email)

	if business.OwnerID != actor.ID {
		payload := map[string]interface{}{
			"business_id":   business.ID,
			"business_name": business.Name,
			"sender_id":     actor.ID,
			"sender_name":   senderName,
			"sender_email":  actor.Email,
			"message":       in.Message,
		}
		if in.Phone != "" {
			payload["phone"] = in.Phone
		}
		if in.Company != "" {
			payload["company"] = in.Company
		}
		if err := s.notifier.Notify(ctx, business.OwnerID, models.NotificationContactRequest, payload); err != nil {
			logger.Log.WithFields(logrus.Fields{"business_id": business.ID, "error": err}).Warn("contact service: owner notification failed")
		}
	}

	if business.Email == nil || strings.TrimSpace(*business.Email) == "" {
		logger.Log.WithField("business_id", business.ID).Info("contact service: business has no email, notification only")
		return nil
	}

	err = s.emailer.SendContactEmail(ctx, ContactEmail{
		To:           strings.TrimSpace(*business.Email),
		ReplyTo:      actor.Email,
		BusinessName: business.Name,
		SenderName:   senderName,
		SenderEmail:  actor.Email,
		Phone:        in.Phone,
		Company:      in.Company,
		Message:      in.Message,
	})
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"business_id": business.ID, "error": err}).Error("contact service: email delivery failed")
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отправить сообщение, попробуйте позже")
	}
	return nil
}
