package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
	"github.com/ignatzorin/classifieds-backend/internal/service"
	"github.com/ignatzorin/classifieds-backend/internal/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterBindingTags(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func withUser(userID uuid.UUID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("email", email)
		c.Next()
	}
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtectedHandlers_Unauthorized(t *testing.T) {
	r := gin.New()
	business := &BusinessHandler{businesses: nil}
	endorsement := &EndorsementHandler{endorsements: nil}
	listing := &ListingHandler{listings: nil}
	contact := &ContactHandler{contacts: nil}
	media := &MediaHandler{media: nil}
	profile := &ProfileHandler{profiles: nil}
	notification := &NotificationHandler{notifications: nil}
	seed := &SeedHandler{seedService: nil}

	r.POST("/businesses", business.CreateBusiness)
	r.PUT("/businesses/:id", business.UpdateBusiness)
	r.DELETE("/businesses/:id", business.DeleteBusiness)
	r.POST("/businesses/:id/endorsement", endorsement.ToggleEndorsement)
	r.POST("/businesses/:id/category-endorsements", endorsement.ToggleCategoryEndorsement)
	r.PUT("/businesses/:id/recommendation", endorsement.UpsertRecommendation)
	r.POST("/listings/:category", listing.CreateDraft)
	r.POST("/listings/:category/:id/publish", listing.Publish)
	r.POST("/contact-business", contact.ContactBusiness)
	r.POST("/upload", media.Upload)
	r.GET("/profile", profile.GetProfile)
	r.GET("/notifications", notification.ListNotifications)
	r.POST("/seed", seed.Seed)

	id := uuid.NewString()
	requests := []struct{ method, path string }{
		{http.MethodPost, "/businesses"},
		{http.MethodPut, "/businesses/" + id},
		{http.MethodDelete, "/businesses/" + id},
		{http.MethodPost, "/businesses/" + id + "/endorsement"},
		{http.MethodPost, "/businesses/" + id + "/category-endorsements"},
		{http.MethodPut, "/businesses/" + id + "/recommendation"},
		{http.MethodPost, "/listings/vehicles"},
		{http.MethodPost, "/listings/vehicles/" + id + "/publish"},
		{http.MethodPost, "/contact-business"},
		{http.MethodPost, "/upload"},
		{http.MethodGet, "/profile"},
		{http.MethodGet, "/notifications"},
		{http.MethodPost, "/seed"},
	}
	for _, rq := range requests {
		t.Run(rq.method+" "+rq.path, func(t *testing.T) {
			w := perform(r, rq.method, rq.path, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestHandlers_InvalidIDs(t *testing.T) {
	r := gin.New()
	r.Use(withUser(uuid.New(), "user@example.com"))
	business := &BusinessHandler{businesses: nil}
	endorsement := &EndorsementHandler{endorsements: nil}
	listing := &ListingHandler{listings: nil}
	notification := &NotificationHandler{notifications: nil}

	r.GET("/businesses/:id", business.GetBusiness)
	r.GET("/businesses/:id/trust", endorsement.GetTrustSummary)
	r.POST("/businesses/:id/endorsement", endorsement.ToggleEndorsement)
	r.GET("/listings/:category/:id", listing.GetListing)
	r.PUT("/notifications/:id/read", notification.MarkAsRead)

	for _, path := range []string{
		"/businesses/invalid-uuid",
		"/businesses/invalid-uuid/trust",
		"/listings/vehicles/invalid-uuid",
	} {
		w := perform(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w := perform(r, http.MethodPost, "/businesses/invalid-uuid/endorsement", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPut, "/notifications/invalid-uuid/read", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListingHandler_UnknownCategory(t *testing.T) {
	r := gin.New()
	listing := &ListingHandler{listings: nil}
	r.GET("/listings/:category", listing.ListPublished)

	for _, path := range []string{"/listings/boats", "/listings/Vehicles", "/listings/%20"} {
		w := perform(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestListingHandler_InvalidPrice(t *testing.T) {
	r := gin.New()
	listing := &ListingHandler{listings: nil}
	r.GET("/listings/:category", listing.ListPublished)

	w := perform(r, http.MethodGet, "/listings/plant?min_price=cheap", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEndorsementHandler_CategoryBinding(t *testing.T) {
	r := gin.New()
	r.Use(withUser(uuid.New(), "user@example.com"))
	endorsement := &EndorsementHandler{endorsements: nil}
	r.POST("/businesses/:id/category-endorsements", endorsement.ToggleCategoryEndorsement)

	path := "/businesses/" + uuid.NewString() + "/category-endorsements"
	w := perform(r, http.MethodPost, path, `{"category":"Speed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEndorsementHandler_RecommendationBinding(t *testing.T) {
	r := gin.New()
	r.Use(withUser(uuid.New(), "user@example.com"))
	endorsement := &EndorsementHandler{endorsements: nil}
	r.PUT("/businesses/:id/recommendation", endorsement.UpsertRecommendation)

	path := "/businesses/" + uuid.NewString() + "/recommendation"
	for _, body := range []string{
		`{}`,
		`{"relationship_type":"Friend"}`,
		`{"relationship_type":"Past Client","tags":["Speed"]}`,
		`{"relationship_type":"Past Client","tags":["Reliability","Communication","Safety","Expertise"]}`,
	} {
		w := perform(r, http.MethodPut, path, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), `"success":false`, body)
	}
}

func TestBusinessHandler_LocationBinding(t *testing.T) {
	r := gin.New()
	r.Use(withUser(uuid.New(), "owner@example.com"))
	business := &BusinessHandler{businesses: nil}
	r.PUT("/businesses/:id/location", business.UpdateLocation)

	w := perform(r, http.MethodPut, "/businesses/"+uuid.NewString()+"/location", `{"status":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMapHandler_InvalidQuery(t *testing.T) {
	r := gin.New()
	h := &MapHandler{maps: nil}
	r.GET("/map/businesses", h.Businesses)

	w := perform(r, http.MethodGet, "/map/businesses?zoom=far", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/map/businesses?zoom=40", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, zoom := range []string{"NaN", "nan", "Inf", "-Inf"} {
		w = perform(r, http.MethodGet, "/map/businesses?zoom="+zoom, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, zoom)
		assert.Contains(t, w.Body.String(), `"success":false`, zoom)
	}

	w = perform(r, http.MethodGet, "/map/businesses?selected=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubGeocoded struct {
	businesses []models.Business
}

func (s stubGeocoded) ListGeocoded(ctx context.Context, businessType string) ([]models.Business, error) {
	return s.businesses, nil
}

func TestMapHandler_ConfigAndView(t *testing.T) {
	lat, lng := -36.8485, 174.7633
	city := "Auckland"
	maps := service.NewMapService(stubGeocoded{businesses: []models.Business{
		{ID: uuid.New(), Name: "A", City: &city, Latitude: &lat, Longitude: &lng, GeocodingStatus: models.GeocodingSuccess},
		{ID: uuid.New(), Name: "B", City: &city, Latitude: &lat, Longitude: &lng, GeocodingStatus: models.GeocodingSuccess},
	}}, nil, "")

	r := gin.New()
	h := NewMapHandler(maps)
	r.GET("/map/config", h.Config)
	r.GET("/map/businesses", h.Businesses)

	w := perform(r, http.MethodGet, "/map/config", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled":false}`, w.Body.String())

	w = perform(r, http.MethodGet, "/map/businesses?zoom=14", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tier":"detailed"`)
	assert.Contains(t, w.Body.String(), `"count":2`)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }
func (p stubPinger) Ping(ctx context.Context) error        { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		db     error
		cache  error
		code   int
		status string
	}{
		{"healthy", nil, nil, http.StatusOK, `"status":"healthy"`},
		{"cache down", nil, errors.New("redis down"), http.StatusOK, `"status":"degraded"`},
		{"db down", errors.New("db down"), nil, http.StatusServiceUnavailable, `"status":"unhealthy"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewHealthHandler(stubPinger{err: tt.db}, stubPinger{err: tt.cache})
			r.GET("/health", h.Health)

			w := perform(r, http.MethodGet, "/health", "")
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.status)
		})
	}
}

type stubBusinesses map[uuid.UUID]*models.Business

func (s stubBusinesses) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	if b, ok := s[id]; ok {
		return b, nil
	}
	return nil, apperror.ErrBusinessNotFound
}

type stubProfiles struct{}

func (stubProfiles) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return nil, nil
}

type stubNotifier struct{ kinds []string }

func (n *stubNotifier) Notify(ctx context.Context, userID uuid.UUID, kind string, data interface{}) error {
	n.kinds = append(n.kinds, kind)
	return nil
}

type stubEmailer struct{ sent []service.ContactEmail }

func (e *stubEmailer) SendContactEmail(ctx context.Context, msg service.ContactEmail) error {
	e.sent = append(e.sent, msg)
	return nil
}

func TestContactHandler_ContactBusiness(t *testing.T) {
	email := "team@acme.example"
	b := &models.Business{ID: uuid.New(), OwnerID: uuid.New(), Name: "Acme", Email: &email}
	notifier := &stubNotifier{}
	emailer := &stubEmailer{}
	h := NewContactHandler(service.NewContactService(stubBusinesses{b.ID: b}, stubProfiles{}, notifier, emailer))

	r := gin.New()
	r.Use(withUser(uuid.New(), "visitor@example.com"))
	r.POST("/contact-business", h.ContactBusiness)

	w := perform(r, http.MethodPost, "/contact-business", `{"business_id":"`+b.ID.String()+`","message":"Could you quote for a deck?","company":"Home"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	require.Len(t, emailer.sent, 1)
	assert.Equal(t, "visitor@example.com", emailer.sent[0].ReplyTo)
	assert.Equal(t, []string{models.NotificationContactRequest}, notifier.kinds)

	w = perform(r, http.MethodPost, "/contact-business", `{"business_id":"`+b.ID.String()+`","message":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = perform(r, http.MethodPost, "/contact-business", `{"business_id":"`+uuid.NewString()+`","message":"Could you quote for a deck?"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodPost, "/contact-business", `{"message":"Could you quote for a deck?"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMediaHandler_MissingFile(t *testing.T) {
	r := gin.New()
	r.Use(withUser(uuid.New(), "owner@example.com"))
	h := &MediaHandler{media: nil}
	r.POST("/upload", h.Upload)

	req, _ := http.NewRequest(http.MethodPost, "/upload", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
