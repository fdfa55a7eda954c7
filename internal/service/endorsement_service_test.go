package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
)

type endorsementFixture struct {
	store    *memoryStore
	notifier *recordingNotifier
	pages    *recordingRevalidator
	svc      *EndorsementService
	owner    uuid.UUID
	business *models.Business
}

func newEndorsementFixture(t *testing.T) *endorsementFixture {
	t.Helper()
	store := newMemoryStore()
	notifier := &recordingNotifier{}
	pages := &recordingRevalidator{}
	svc := NewEndorsementService(store, recommendationStore{store}, viewStore{store}, store, profileStore{store}, notifier, pages, nil)
	svc.now = func() time.Time { return store.clock }

	owner := uuid.New()
	return &endorsementFixture{
		store:    store,
		notifier: notifier,
		pages:    pages,
		svc:      svc,
		owner:    owner,
		business: store.addBusiness(owner, "Acme Roofing"),
	}
}

func actor(email string) *models.Actor {
	return &models.Actor{ID: uuid.New(), Email: email}
}

func TestToggleEndorsement_RoundTrip(t *testing.T) {
	f := newEndorsementFixture(t)
	ctx := context.Background()
	user := actor("kate@example.com")

	res, err := f.svc.ToggleEndorsement(ctx, user, f.business.ID)
	require.NoError(t, err)
	assert.True(t, res.Endorsed)

	res, err = f.svc.ToggleEndorsement(ctx, user, f.business.ID)
	require.NoError(t, err)
	assert.False(t, res.Endorsed)

	f.svc.Wait()
	assert.Empty(t, f.store.endorsements)
	assert.Equal(t, 2, f.pages.Count())
	// Уведомление только при вставке
	assert.Equal(t, []sentNotification{{UserID: f.owner, Kind: models.NotificationEndorsement}}, f.notifier.Sent())
}

func TestToggleEndorsement_OwnerIsNotNotified(t *testing.T) {
	f := newEndorsementFixture(t)
	ctx := context.Background()

	res, err := f.svc.ToggleEndorsement(ctx, &models.Actor{ID: f.owner}, f.business.ID)
	require.NoError(t, err)
	assert.True(t, res.Endorsed)

	f.svc.Wait()
	assert.Empty(t, f.notifier.Sent())
}

func TestToggleEndorsement_Unauthenticated(t *testing.T) {
	f := newEndorsementFixture(t)

	_, err := f.svc.ToggleEndorsement(context.Background(), nil, f.business.ID)
	assert.True(t, apperror.IsUnauthorized(err))
	assert.Empty(t, f.store.endorsements)
	assert.Zero(t, f.pages.Count())
}

func TestToggleEndorsement_UnknownBusiness(t *testing.T) {
	f := newEndorsementFixture(t)

	_, err := f.svc.ToggleEndorsement(context.Background(), actor("a@b.co"), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestToggleEndorsement_NotificationFailureDoesNotFailMutation(t *testing.T) {
	f := newEndorsementFixture(t)
	f.notifier.fail = errors.New("smtp down")

	res, err := f.svc.ToggleEndorsement(context.Background(), actor("a@b.co"), f.business.ID)
	require.NoError(t, err)
	assert.True(t, res.Endorsed)

	f.svc.Wait()
	assert.Equal(t, 1, f.notifier.calls)
	assert.Len(t, f.store.endorsements, 1)
}

func TestToggleCategoryEndorsement(t *testing.T) {
	f := newEndorsementFixture(t)
	ctx := context.Background()
	user := actor("a@b.co")

	res, err := f.svc.ToggleCategoryEndorsement(ctx, user, f.business.ID, models.CategoryReliability)
	require.NoError(t, err)
	assert.True(t, res.Endorsed)

	res, err = f.svc.ToggleCategoryEndorsement(ctx, user, f.business.ID, models.CategorySafety)
	require.NoError(t, err)
	assert.True(t, res.Endorsed)

	res, err = f.svc.ToggleCategoryEndorsement(ctx, user, f.business.ID, models.CategoryReliability)
	require.NoError(t, err)
	assert.False(t, res.Endorsed)

	require.Len(t, f.store.categories, 1)
	assert.Equal(t, models.CategorySafety, f.store.categories[0].Category)
}

func TestToggleCategoryEndorsement_InvalidCategory(t *testing.T) {
	f := newEndorsementFixture(t)

	_, err := f.svc.ToggleCategoryEndorsement(context.Background(), actor("a@b.co"), f.business.ID, "Speed")
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, f.store.categories)
}

func TestUpsertRecommendation_CreatesThenUpdatesSingleRow(t *testing.T) {
	f := newEndorsementFixture(t)
	ctx := context.Background()
	user := actor("jane.doe@example.com")
	f.store.profiles[user.ID] = &models.Profile{ID: user.ID, FirstName: strPtr("Jane"), LastName: strPtr("Doe")}

	res, err := f.svc.UpsertRecommendation(ctx, user, f.business.ID, models.RelationshipPastClient,
		[]string{models.CategoryReliability, models.CategoryReliability, models.CategorySafety})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "Jane Doe", res.Recommendation.RecommenderName)
	assert.Equal(t, []string{models.CategoryReliability, models.CategorySafety}, []string(res.Recommendation.Tags))

	res, err = f.svc.UpsertRecommendation(ctx, user, f.business.ID, models.RelationshipSupplier, []string{models.CategoryExpertise})
	require.NoError(t, err)
	assert.False(t, res.Created)

	f.svc.Wait()
	require.Len(t, f.store.recommendations, 1)
	assert.Equal(t, models.RelationshipSupplier, f.store.recommendations[0].RelationshipType)
	assert.Equal(t, []string{models.CategoryExpertise}, []string(f.store.recommendations[0].Tags))
	// Обновление не уведомляет повторно
	assert.Len(t, f.notifier.Sent(), 1)
}

func TestUpsertRecommendation_Validation(t *testing.T) {
	f := newEndorsementFixture(t)
	ctx := context.Background()
	user := actor("a@b.co")

	tests := []struct {
		name         string
		relationship string
		tags         []string
	}{
		{"unknown relationship", "Friend", nil},
		{"too many tags", models.RelationshipPastClient, []string{
			models.CategoryReliability, models.CategorySafety, models.CategoryExpertise, models.CategoryTimeliness,
		}},
		{"unknown tag", models.RelationshipPastClient, []string{"Cheap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpsertRecommendation(ctx, user, f.business.ID, tt.relationship, tt.tags)
			assert.True(t, apperror.IsValidation(err))
		})
	}
	assert.Empty(t, f.store.recommendations)
}

func TestUpsertRecommendation_FallsBackToEmailLocalPart(t *testing.T) {
	f := newEndorsementFixture(t)

	res, err := f.svc.UpsertRecommendation(context.Background(), actor("builder.bob@example.com"), f.business.ID, models.RelationshipOther, nil)
	require.NoError(t, err)
	assert.Equal(t, "builder.bob", res.Recommendation.RecommenderName)
	assert.Empty(t, res.Recommendation.Tags)
}

func TestRemoveRecommendation(t *testing.T) {
	f := newEndorsementFixture(t)
	ctx := context.Background()
	user := actor("a@b.co")

	err := f.svc.RemoveRecommendation(ctx, user, f.business.ID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.UpsertRecommendation(ctx, user, f.business.ID, models.RelationshipOther, nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveRecommendation(ctx, user, f.business.ID))
	assert.Empty(t, f.store.recommendations)
}

func TestGetTrustSummary_Aggregates(t *testing.T) {
	f := newEndorsementFixture(t)
	ctx := context.Background()

	viewer := actor("viewer@example.com")
	others := []*models.Actor{actor("a@example.com"), actor("b@example.com")}

	for _, u := range append(others, viewer) {
		_, err := f.svc.ToggleEndorsement(ctx, u, f.business.ID)
		require.NoError(t, err)
	}
	for _, u := range others {
		_, err := f.svc.UpsertRecommendation(ctx, u, f.business.ID, models.RelationshipPastClient, []string{models.CategoryReliability})
		require.NoError(t, err)
	}
	_, err := f.svc.ToggleCategoryEndorsement(ctx, viewer, f.business.ID, models.CategorySafety)
	require.NoError(t, err)
	_, err = f.svc.ToggleCategoryEndorsement(ctx, others[0], f.business.ID, models.CategorySafety)
	require.NoError(t, err)
	_, err = f.svc.ToggleCategoryEndorsement(ctx, others[0], f.business.ID, models.CategoryExpertise)
	require.NoError(t, err)

	views := viewStore{f.store}
	require.NoError(t, views.Create(ctx, &models.ProfileView{BusinessID: f.business.ID}))
	f.svc.Wait()

	summary, err := f.svc.GetTrustSummary(ctx, f.business.ID, &viewer.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalEndorsements)
	assert.Equal(t, 2, summary.TotalRecommendations)
	assert.Equal(t, map[string]int{models.RelationshipPastClient: 2}, summary.RelationshipBreakdown)
	assert.Equal(t, 1, summary.ViewsLast30Days)
	assert.True(t, summary.ViewerHasEndorsed)
	assert.False(t, summary.ViewerHasRecommended)

	require.Len(t, summary.Categories, len(models.EndorsementCategories))
	assert.Equal(t, models.CategoryCount{Category: models.CategorySafety, Count: 2, ViewerHasEndorsed: true}, summary.Categories[0])
	assert.Equal(t, models.CategoryCount{Category: models.CategoryExpertise, Count: 1}, summary.Categories[1])

	total := 0
	for _, c := range summary.Categories {
		total += c.Count
	}
	assert.Equal(t, len(f.store.categories), total)
}

func TestGetTrustSummary_AnonymousViewer(t *testing.T) {
	f := newEndorsementFixture(t)
	ctx := context.Background()

	_, err := f.svc.ToggleEndorsement(ctx, actor("a@b.co"), f.business.ID)
	require.NoError(t, err)

	summary, err := f.svc.GetTrustSummary(ctx, f.business.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEndorsements)
	assert.False(t, summary.ViewerHasEndorsed)
	assert.Empty(t, summary.RecentRecommendations)
}

func TestGetTrustSummary_MissingBusiness(t *testing.T) {
	f := newEndorsementFixture(t)

	_, err := f.svc.GetTrustSummary(context.Background(), uuid.New(), nil)
	assert.True(t, apperror.IsNotFound(err))
}
