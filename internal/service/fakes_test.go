package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
)

// memoryStore реализует репозитории одобрений, рекомендаций, просмотров и компаний в памяти.
type memoryStore struct {
	mu              sync.Mutex
	businesses      map[uuid.UUID]*models.Business
	endorsements    []models.Endorsement
	categories      []models.CategoryEndorsement
	recommendations []models.Recommendation
	views           []models.ProfileView
	profiles        map[uuid.UUID]*models.Profile
	clock           time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		businesses: make(map[uuid.UUID]*models.Business),
		profiles:   make(map[uuid.UUID]*models.Profile),
		clock:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memoryStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memoryStore) addBusiness(ownerID uuid.UUID, name string) *models.Business {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &models.Business{ID: uuid.New(), OwnerID: ownerID, Name: name, BusinessType: "Builder", GeocodingStatus: models.GeocodingPending}
	m.businesses[b.ID] = b
	return b
}

// BusinessRepository

func (m *memoryStore) Create(ctx context.Context, b *models.Business) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.New()
	b.CreatedAt = m.tick()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.businesses[b.ID] = &cp
	return nil
}

func (m *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok {
		return nil, apperror.ErrBusinessNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryStore) Update(ctx context.Context, b *models.Business) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.businesses[b.ID]
	if !ok || existing.OwnerID != b.OwnerID {
		return apperror.ErrBusinessNotFound
	}
	cp := *b
	m.businesses[b.ID] = &cp
	return nil
}

func (m *memoryStore) UpdateLocation(ctx context.Context, id, ownerID uuid.UUID, lat, lng *float64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok || b.OwnerID != ownerID {
		return apperror.ErrBusinessNotFound
	}
	b.Latitude, b.Longitude, b.GeocodingStatus = lat, lng, status
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok || b.OwnerID != ownerID {
		return apperror.ErrBusinessNotFound
	}
	delete(m.businesses, id)
	return nil
}

func (m *memoryStore) List(ctx context.Context, f models.BusinessFilter) ([]models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Business{}
	for _, b := range m.businesses {
		if f.BusinessType != "" && b.BusinessType != f.BusinessType {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *memoryStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Business{}
	for _, b := range m.businesses {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memoryStore) ListGeocoded(ctx context.Context, businessType string) ([]models.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Business{}
	for _, b := range m.businesses {
		if b.GeocodingStatus != models.GeocodingSuccess {
			continue
		}
		if businessType != "" && b.BusinessType != businessType {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

// EndorsementRepository

func (m *memoryStore) GetEndorsement(ctx context.Context, businessID, userID uuid.UUID) (*models.Endorsement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.endorsements {
		if e.BusinessID == businessID && e.UserID == userID {
			cp := e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) CreateEndorsement(ctx context.Context, e *models.Endorsement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.endorsements {
		if existing.BusinessID == e.BusinessID && existing.UserID == e.UserID {
			return apperror.New(apperror.ErrCodeConflict, "запись уже существует")
		}
	}
	e.ID = uuid.New()
	e.CreatedAt = m.tick()
	m.endorsements = append(m.endorsements, *e)
	return nil
}

func (m *memoryStore) DeleteEndorsement(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.endorsements {
		if e.ID == id {
			m.endorsements = append(m.endorsements[:i], m.endorsements[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memoryStore) ListEndorsements(ctx context.Context, businessID uuid.UUID) ([]models.Endorsement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Endorsement{}
	for _, e := range m.endorsements {
		if e.BusinessID == businessID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryStore) GetCategoryEndorsement(ctx context.Context, businessID, userID uuid.UUID, category string) (*models.CategoryEndorsement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.categories {
		if e.BusinessID == businessID && e.UserID == userID && e.Category == category {
			cp := e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) CreateCategoryEndorsement(ctx context.Context, e *models.CategoryEndorsement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = m.tick()
	m.categories = append(m.categories, *e)
	return nil
}

func (m *memoryStore) DeleteCategoryEndorsement(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.categories {
		if e.ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memoryStore) ListCategoryEndorsements(ctx context.Context, businessID uuid.UUID) ([]models.CategoryEndorsement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.CategoryEndorsement{}
	for _, e := range m.categories {
		if e.BusinessID == businessID {
			out = append(out, e)
		}
	}
	return out, nil
}

// recommendationStore реализует RecommendationRepository поверх memoryStore.
type recommendationStore struct{ *memoryStore }

func (r recommendationStore) GetByBusinessAndUser(ctx context.Context, businessID, userID uuid.UUID) (*models.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recommendations {
		if rec.BusinessID == businessID && rec.UserID == userID {
			cp := rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r recommendationStore) Create(ctx context.Context, rec *models.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = uuid.New()
	rec.CreatedAt = r.tick()
	rec.UpdatedAt = rec.CreatedAt
	r.recommendations = append(r.recommendations, *rec)
	return nil
}

func (r recommendationStore) UpdateDetails(ctx context.Context, rec *models.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.recommendations {
		if r.recommendations[i].ID == rec.ID {
			r.recommendations[i].RelationshipType = rec.RelationshipType
			r.recommendations[i].Tags = rec.Tags
			r.recommendations[i].UpdatedAt = r.tick()
			rec.UpdatedAt = r.recommendations[i].UpdatedAt
			return nil
		}
	}
	return apperror.New(apperror.ErrCodeNotFound, "рекомендация не найдена")
}

func (r recommendationStore) Delete(ctx context.Context, businessID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.recommendations {
		if rec.BusinessID == businessID && rec.UserID == userID {
			r.recommendations = append(r.recommendations[:i], r.recommendations[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r recommendationStore) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Recommendation{}
	// Новые первыми, как в репозитории
	for i := len(r.recommendations) - 1; i >= 0; i-- {
		if r.recommendations[i].BusinessID == businessID {
			out = append(out, r.recommendations[i])
		}
	}
	return out, nil
}

// viewStore реализует ProfileViewCounter и ProfileViewRecorder.
type viewStore struct{ *memoryStore }

func (v viewStore) Create(ctx context.Context, view *models.ProfileView) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	view.ID = uuid.New()
	view.ViewedAt = v.clock
	v.views = append(v.views, *view)
	return nil
}

func (v viewStore) CountSince(ctx context.Context, businessID uuid.UUID, since time.Time) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, view := range v.views {
		if view.BusinessID == businessID && !view.ViewedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// profileStore реализует ProfileLookup.
type profileStore struct{ *memoryStore }

func (p profileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profiles[id], nil
}

// recordingNotifier запоминает отправленные уведомления.
type recordingNotifier struct {
	mu    sync.Mutex
	sent  []sentNotification
	fail  error
	calls int
}

type sentNotification struct {
	UserID uuid.UUID
	Kind   string
}

func (n *recordingNotifier) Notify(ctx context.Context, userID uuid.UUID, kind string, data interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, sentNotification{UserID: userID, Kind: kind})
	return nil
}

func (n *recordingNotifier) Sent() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification{}, n.sent...)
}

// recordingRevalidator запоминает сброшенные страницы.
type recordingRevalidator struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *recordingRevalidator) RevalidateBusiness(ctx context.Context, businessID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, businessID)
}

func (r *recordingRevalidator) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

func floatPtr(f float64) *float64 { return &f }

func (p profileStore) Upsert(ctx context.Context, profile *models.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *profile
	cp.UpdatedAt = p.clock
	if existing, ok := p.profiles[profile.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = p.clock
	}
	p.profiles[profile.ID] = &cp
	profile.CreatedAt, profile.UpdatedAt = cp.CreatedAt, cp.UpdatedAt
	return nil
}
