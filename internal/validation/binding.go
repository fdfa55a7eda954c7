package validation

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/classifieds-backend/internal/models"
)

// Теги, доступные в `binding:"..."` запросов.
const (
	TagEndorsementCategory = "endorsement_category"
	TagRelationshipType    = "relationship_type"
	TagListingCategory     = "listing_category"
	TagGeocodingStatus     = "geocoding_status"
)

// RegisterBindingTags регистрирует теги закрытых перечислений в валидаторе gin.
func RegisterBindingTags() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validation: неожиданный движок валидации %T", binding.Validator.Engine())
	}
	return RegisterTags(v)
}

// RegisterTags регистрирует теги в переданном валидаторе.
func RegisterTags(v *validator.Validate) error {
	listing := make(map[string]struct{}, len(models.ListingCategories))
	for _, c := range models.ListingCategories {
		listing[string(c)] = struct{}{}
	}

	tags := map[string]map[string]struct{}{
		TagEndorsementCategory: models.ValidEndorsementCategories,
		TagRelationshipType:    models.ValidRelationshipTypes,
		TagListingCategory:     listing,
		TagGeocodingStatus:     models.ValidGeocodingStatuses,
	}
	for tag, set := range tags {
		if err := v.RegisterValidation(tag, oneOfSet(set)); err != nil {
			return fmt.Errorf("validation: register %s %w", tag, err)
		}
	}
	return nil
}

func oneOfSet(set map[string]struct{}) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}
