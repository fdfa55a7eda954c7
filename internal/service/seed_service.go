package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/classifieds-backend/internal/logger"
	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
)

// Ограничения на объём демо-данных за один запрос.
const (
	DefaultSeedBusinesses = 30
	DefaultSeedListings   = 60
	MaxSeedBusinesses     = 500
	MaxSeedListings       = 2000
)

// BusinessCreator сохраняет новые компании.
type BusinessCreator interface {
	Create(ctx context.Context, b *models.Business) error
}

// ListingCreator сохраняет новые объявления.
type ListingCreator interface {
	Create(ctx context.Context, l *models.Listing) error
}

// SeedResult итог генерации демо-данных.
type SeedResult struct {
	Businesses int `json:"businesses"`
	Listings   int `json:"listings"`
}

type seedCity struct {
	name, region string
	lat, lng     float64
}

var seedCities = []seedCity{
	{"Auckland", "Auckland", -36.8485, 174.7633},
	{"Wellington", "Wellington", -41.2865, 174.7762},
	{"Christchurch", "Canterbury", -43.5321, 172.6362},
	{"Hamilton", "Waikato", -37.7870, 175.2793},
	{"Tauranga", "Bay of Plenty", -37.6878, 176.1651},
	{"Dunedin", "Otago", -45.8788, 170.5028},
	{"Napier", "Hawke's Bay", -39.4928, 176.9120},
	{"Nelson", "Nelson", -41.2706, 173.2840},
}

var seedBusinessTypes = []string{
	"Builder", "Electrician", "Plumber", "Roofer", "Landscaper",
	"Painter", "Concrete", "Excavation", "Scaffolding", "Architect",
}

var seedNamePrefixes = []string{
	"Southern", "Kiwi", "Summit", "Harbour", "Ironbark", "Totara",
	"Coastal", "Alpine", "Redwood", "Pacific", "Kauri", "Meridian",
}

// SeedService генерирует демо-компании и объявления для разработки.
type SeedService struct {
	businesses BusinessCreator
	listings   ListingCreator
	pages      *PageCache
	rnd        *rand.Rand
}

// NewSeedService создаёт сервис демо-данных. pages может быть nil.
func NewSeedService(businesses BusinessCreator, listings ListingCreator, pages *PageCache) *SeedService {
	return &SeedService{
		businesses: businesses,
		listings:   listings,
		pages:      pages,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedData создаёт компании и опубликованные объявления от имени actor.
// Часть компаний получает одинаковые координаты, чтобы на карте были общие точки.
func (s *SeedService) SeedData(ctx context.Context, actor *models.Actor, numBusinesses, numListings int) (*SeedResult, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	numBusinesses = clampSeed(numBusinesses, DefaultSeedBusinesses, MaxSeedBusinesses)
	numListings = clampSeed(numListings, DefaultSeedListings, MaxSeedListings)

	result := &SeedResult{}
	for i := 0; i < numBusinesses; i++ {
		b := s.fakeBusiness(actor.ID, i)
		if err := s.businesses.Create(ctx, b); err != nil {
			return result, fmt.Errorf("seed service: create business %w", err)
		}
		result.Businesses++
	}

	for i := 0; i < numListings; i++ {
		category := models.ListingCategories[i%len(models.ListingCategories)]
		l := s.fakeListing(actor, category)
		if err := ValidateForPublish(l); err != nil {
			return result, fmt.Errorf("seed service: listing not publishable %w", err)
		}
		if err := s.listings.Create(ctx, l); err != nil {
			return result, fmt.Errorf("seed service: create listing %w", err)
		}
		result.Listings++
	}

	if s.pages != nil {
		s.pages.RevalidateMap(ctx)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":    actor.ID,
		"businesses": result.Businesses,
		"listings":   result.Listings,
	}).Info("seed service: demo data created")
	return result, nil
}

func (s *SeedService) fakeBusiness(ownerID uuid.UUID, i int) *models.Business {
	city := seedCities[s.rnd.Intn(len(seedCities))]
	lat, lng := city.lat, city.lng
	// Каждая третья компания стоит в центре города, остальные разбросаны вокруг.
	if i%3 != 0 {
		lat += (s.rnd.Float64() - 0.5) * 0.1
		lng += (s.rnd.Float64() - 0.5) * 0.1
	}

	businessType := seedBusinessTypes[s.rnd.Intn(len(seedBusinessTypes))]
	name := fmt.Sprintf("%s %s %d", seedNamePrefixes[s.rnd.Intn(len(seedNamePrefixes))], businessType, i+1)
	email := fmt.Sprintf("hello%d@example.co.nz", i+1)
	phone := fmt.Sprintf("+64 9 %03d %04d", s.rnd.Intn(1000), s.rnd.Intn(10000))
	description := fmt.Sprintf("%s в городе %s. Демо-данные.", businessType, city.name)
	country := "New Zealand"

	return &models.Business{
		OwnerID:         ownerID,
		Name:            name,
		BusinessType:    businessType,
		Description:     &description,
		City:            strPtr(city.name),
		Region:          strPtr(city.region),
		Country:         &country,
		Email:           &email,
		Phone:           &phone,
		Gallery:         []string{},
		Branches:        models.Branches{},
		Latitude:        &lat,
		Longitude:       &lng,
		GeocodingStatus: models.GeocodingSuccess,
	}
}

func (s *SeedService) fakeListing(actor *models.Actor, category models.ListingCategory) *models.Listing {
	city := seedCities[s.rnd.Intn(len(seedCities))]
	price := float64(50 + s.rnd.Intn(20000))
	description := fmt.Sprintf("Демо-объявление в категории %s.", category)
	phone := fmt.Sprintf("+64 21 %03d %04d", s.rnd.Intn(1000), s.rnd.Intn(10000))

	l := &models.Listing{
		Category:     category,
		UserID:       actor.ID,
		Description:  &description,
		Price:        &price,
		City:         strPtr(city.name),
		Region:       strPtr(city.region),
		ContactPhone: &phone,
		Images:       []string{},
		Details:      models.Details{},
		Status:       models.ListingStatusPublished,
	}

	switch category {
	case models.ListingMaterials:
		l.Title = "Остатки пиломатериалов"
		l.Details["material_type"] = "Timber"
		l.Details["quantity"] = fmt.Sprintf("%d m", 10+s.rnd.Intn(200))
	case models.ListingPlant:
		l.Title = "Аренда мини-экскаватора"
		l.Details["equipment_type"] = "Excavator"
	case models.ListingVehicles:
		l.Title = "Рабочий пикап"
		l.Details["make"] = "Toyota"
		l.Details["model"] = "Hilux"
		l.Details["year"] = 2010 + s.rnd.Intn(15)
	case models.ListingPersonnel:
		l.Title = "Опытный плотник ищет работу"
		l.Details["trade"] = "Carpenter"
	case models.ListingPositions:
		l.Title = "Требуется электрик"
		l.Details["job_title"] = "Electrician"
		l.Details["employment_type"] = "Full-time"
	case models.ListingProjects:
		l.Title = "Ремонт кровли частного дома"
		l.Details["project_type"] = "Roofing"
	}
	return l
}

func clampSeed(n, def, max int) int {
	if n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func strPtr(s string) *string {
	return &s
}
