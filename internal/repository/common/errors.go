package common

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
)

// Коды ошибок PostgreSQL, которые мы переводим в понятные сообщения.
const (
	PgUniqueViolation  = "23505"
	PgNotNullViolation = "23502"
	PgUndefinedColumn  = "42703"
)

// MapPgError превращает ошибку драйвера в apperror.AppError.
// Известные коды получают дружелюбное сообщение, остальные передаются как есть.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if isUniqueViolation(err) {
		return apperror.Wrap(err, apperror.ErrCodeConflict, "запись уже существует")
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, err.Error())
	}

	switch string(pqErr.Code) {
	case PgNotNullViolation:
		msg := "не заполнено обязательное поле"
		if pqErr.Column != "" {
			msg = fmt.Sprintf("не заполнено обязательное поле %s", pqErr.Column)
		}
		return apperror.Wrap(err, apperror.ErrCodeValidation, msg)
	case PgUndefinedColumn:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "неизвестное поле в запросе")
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, pqErr.Message)
	}
}

// isUniqueViolation сообщает, что err - нарушение уникального ограничения.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation
}
