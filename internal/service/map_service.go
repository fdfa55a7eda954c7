package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/classifieds-backend/internal/geo"
	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/repository/common"
)

// GeocodedLister возвращает компании с координатами.
type GeocodedLister interface {
	ListGeocoded(ctx context.Context, businessType string) ([]models.Business, error)
}

// MapConfig публичные настройки виджета карты.
type MapConfig struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key,omitempty"`
}

// MapService отдаёт кластеризованные компании для карты.
type MapService struct {
	businesses GeocodedLister
	pages      *PageCache
	apiKey     string
}

// NewMapService создаёт сервис карты. pages может быть nil.
func NewMapService(businesses GeocodedLister, pages *PageCache, apiKey string) *MapService {
	return &MapService{businesses: businesses, pages: pages, apiKey: apiKey}
}

// Config возвращает настройки карты. Без ключа карта отключена, остальное приложение работает.
func (s *MapService) Config() MapConfig {
	return MapConfig{Enabled: s.apiKey != "", APIKey: s.apiKey}
}

// Markers возвращает маркеры компаний, список кешируется по типу бизнеса.
func (s *MapService) Markers(ctx context.Context, businessType string) ([]geo.Marker, error) {
	key := MapCacheKey(businessType)
	if s.pages != nil {
		var cached []geo.Marker
		if s.pages.GetJSON(ctx, key, &cached) {
			return cached, nil
		}
	}

	businesses, err := s.businesses.ListGeocoded(ctx, businessType)
	if err != nil {
		return nil, common.MapPgError(err)
	}

	markers := geo.Mappable(businesses)
	if s.pages != nil {
		s.pages.SetJSON(ctx, key, markers)
	}
	return markers, nil
}

// View строит представление карты для масштаба. Кластеры пересчитываются на каждый запрос.
func (s *MapService) View(ctx context.Context, businessType string, zoom float64, selected *uuid.UUID) (*geo.MapView, error) {
	markers, err := s.Markers(ctx, businessType)
	if err != nil {
		return nil, err
	}
	view := geo.BuildMapView(markers, zoom, selected)
	return &view, nil
}
