package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "unique violation",
			err:     fmt.Errorf("endorsement repository: create %w", &pq.Error{Code: PgUniqueViolation, Message: "duplicate key"}),
			status:  http.StatusConflict,
			message: "запись уже существует",
		},
		{
			name:    "not null with column",
			err:     &pq.Error{Code: PgNotNullViolation, Column: "name", Message: "null value"},
			status:  http.StatusBadRequest,
			message: "не заполнено обязательное поле name",
		},
		{
			name:    "undefined column",
			err:     &pq.Error{Code: PgUndefinedColumn, Message: `column "foo" does not exist`},
			status:  http.StatusInternalServerError,
			message: "неизвестное поле в запросе",
		},
		{
			name:    "other code passes message through",
			err:     &pq.Error{Code: "23503", Message: "violates foreign key constraint"},
			status:  http.StatusInternalServerError,
			message: "violates foreign key constraint",
		},
		{
			name:    "non pq error",
			err:     errors.New("connection reset"),
			status:  http.StatusInternalServerError,
			message: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := apperror.Describe(MapPgError(tt.err))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestMapPgError_KeepsAppError(t *testing.T) {
	assert.Same(t, apperror.ErrBusinessNotFound, MapPgError(apperror.ErrBusinessNotFound))
	assert.Nil(t, MapPgError(nil))
}

func TestMapPgError_UniqueViolationWrapped(t *testing.T) {
	err := fmt.Errorf("endorsement repository: create %w", &pq.Error{Code: PgUniqueViolation, Constraint: "endorsements_business_id_user_id_key"})
	assert.True(t, isUniqueViolation(err))
	assert.False(t, isUniqueViolation(&pq.Error{Code: PgNotNullViolation}))
	assert.False(t, isUniqueViolation(errors.New("plain")))

	status, message := apperror.Describe(MapPgError(err))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "запись уже существует", message)
}

func TestPlaceholders(t *testing.T) {
	var p Placeholders
	assert.Equal(t, "", p.Where())

	p.Add("city = ?", "Auckland")
	p.Add("(name ILIKE ? OR description ILIKE ?)", "%cafe%")
	limit := p.Arg(20)

	assert.Equal(t, " WHERE city = $1 AND (name ILIKE $2 OR description ILIKE $2)", p.Where())
	assert.Equal(t, "$3", limit)
	assert.Equal(t, []interface{}{"Auckland", "%cafe%", 20}, p.Args())
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Auckland", "Auckland"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`C:\path`, `C:\\path`},
		{`%_\`, `\%\_\\`},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeLike(tt.in), tt.in)
	}

	var p Placeholders
	p.Add("(name ILIKE ? OR description ILIKE ?)", "%"+EscapeLike("50%_off")+"%")
	assert.Equal(t, []interface{}{`%50\%\_off%`}, p.Args())
}
