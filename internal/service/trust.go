package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
)

// RecentRecommendationsLimit сколько последних рекомендаций попадает в сводку.
const RecentRecommendationsLimit = 10

// AnonymousName подпись рекомендации, если у автора нет ни имени, ни email.
const AnonymousName = "Anonymous User"

// TrustInput сырые строки, из которых собирается сводка доверия.
type TrustInput struct {
	BusinessID           uuid.UUID
	ViewerID             *uuid.UUID
	Endorsements         []models.Endorsement
	CategoryEndorsements []models.CategoryEndorsement
	Recommendations      []models.Recommendation
	ViewsLast30Days      int
}

// SummarizeTrust сворачивает строки одобрений и рекомендаций в сводку.
// Recommendations ожидаются отсортированными от новых к старым.
func SummarizeTrust(in TrustInput) models.TrustSummary {
	summary := models.TrustSummary{
		BusinessID:            in.BusinessID,
		TotalEndorsements:     len(in.Endorsements),
		TotalRecommendations:  len(in.Recommendations),
		ViewsLast30Days:       in.ViewsLast30Days,
		RelationshipBreakdown: make(map[string]int),
	}

	isViewer := func(id uuid.UUID) bool {
		return in.ViewerID != nil && *in.ViewerID == id
	}

	for _, e := range in.Endorsements {
		if isViewer(e.UserID) {
			summary.ViewerHasEndorsed = true
			break
		}
	}

	counts := make(map[string]*models.CategoryCount, len(models.EndorsementCategories))
	order := make(map[string]int, len(models.EndorsementCategories))
	for i, c := range models.EndorsementCategories {
		counts[c] = &models.CategoryCount{Category: c}
		order[c] = i
	}
	for _, e := range in.CategoryEndorsements {
		cc, ok := counts[e.Category]
		if !ok {
			// Категория вне текущего перечня (например, переименована) всё равно учитывается.
			cc = &models.CategoryCount{Category: e.Category}
			counts[e.Category] = cc
			order[e.Category] = len(order)
		}
		cc.Count++
		if isViewer(e.UserID) {
			cc.ViewerHasEndorsed = true
		}
	}

	summary.Categories = make([]models.CategoryCount, 0, len(counts))
	for _, cc := range counts {
		summary.Categories = append(summary.Categories, *cc)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		a, b := summary.Categories[i], summary.Categories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return order[a.Category] < order[b.Category]
	})

	for _, r := range in.Recommendations {
		summary.RelationshipBreakdown[r.RelationshipType]++
		if isViewer(r.UserID) {
			summary.ViewerHasRecommended = true
		}
	}

	recent := in.Recommendations
	if len(recent) > RecentRecommendationsLimit {
		recent = recent[:RecentRecommendationsLimit]
	}
	summary.RecentRecommendations = append([]models.Recommendation{}, recent...)

	return summary
}

// ValidateCategory проверяет, что категория входит в закрытый перечень.
func ValidateCategory(category string) error {
	if _, ok := models.ValidEndorsementCategories[category]; !ok {
		return apperror.Validation("недопустимая категория: %s", category)
	}
	return nil
}

// ValidateRecommendation проверяет тип отношений и теги и возвращает теги без дублей.
func ValidateRecommendation(relationshipType string, tags []string) ([]string, error) {
	if _, ok := models.ValidRelationshipTypes[relationshipType]; !ok {
		return nil, apperror.Validation("недопустимый тип отношений: %s", relationshipType)
	}
	if len(tags) > models.MaxRecommendationTags {
		return nil, apperror.Validation("можно выбрать не более %d тегов", models.MaxRecommendationTags)
	}

	seen := make(map[string]struct{}, len(tags))
	clean := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := models.ValidEndorsementCategories[tag]; !ok {
			return nil, apperror.Validation("недопустимый тег: %s", tag)
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		clean = append(clean, tag)
	}
	return clean, nil
}

// DisplayName подпись пользователя: полное имя, имя+фамилия, локальная часть email или AnonymousName.
func DisplayName(profile *models.Profile, email string) string {
	if profile != nil {
		if profile.FullName != nil && strings.TrimSpace(*profile.FullName) != "" {
			return strings.TrimSpace(*profile.FullName)
		}
		parts := make([]string, 0, 2)
		if profile.FirstName != nil && strings.TrimSpace(*profile.FirstName) != "" {
			parts = append(parts, strings.TrimSpace(*profile.FirstName))
		}
		if profile.LastName != nil && strings.TrimSpace(*profile.LastName) != "" {
			parts = append(parts, strings.TrimSpace(*profile.LastName))
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
		if email == "" && profile.Email != nil {
			email = *profile.Email
		}
	}

	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return AnonymousName
}
