// Package geo группирует геокодированные компании для отображения на карте.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/classifieds-backend/internal/models"
)

// Tier уровень детализации карты.
type Tier string

const (
	TierRegion   Tier = "region"
	TierOverview Tier = "overview"
	TierDetailed Tier = "detailed"
)

// Пороги масштаба: ниже RegionZoomMax показываем регионы, от LabelZoomMin подписи маркеров.
const (
	RegionZoomMax = 10
	LabelZoomMin  = 12
)

// UnknownRegion название группы для компаний без города и региона.
const UnknownRegion = "Unknown"

// coordinatePrecision знаков после запятой при группировке по точке (~11 см).
const coordinatePrecision = 6

// Marker компания, готовая к отображению на карте.
type Marker struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	BusinessType string    `json:"business_type"`
	City         string    `json:"city,omitempty"`
	Region       string    `json:"region,omitempty"`
	Address      string    `json:"address,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
}

// LocationCluster компании с одинаковыми координатами.
type LocationCluster struct {
	Key       string   `json:"key"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Count     int      `json:"count"`
	Markers   []Marker `json:"markers"`
}

// RegionCluster компании одного города (или региона) с центроидом.
type RegionCluster struct {
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Count     int      `json:"count"`
	Markers   []Marker `json:"markers"`
}

// MapView данные, которые виджет карты отрисовывает на текущем масштабе.
type MapView struct {
	Tier       Tier              `json:"tier"`
	Zoom       float64           `json:"zoom"`
	ShowLabels bool              `json:"show_labels"`
	Total      int               `json:"total"`
	Regions    []RegionCluster   `json:"regions,omitempty"`
	Locations  []LocationCluster `json:"locations,omitempty"`
	Selected   *LocationCluster  `json:"selected,omitempty"`
}

// Mappable оставляет компании с успешным геокодированием и корректными координатами.
func Mappable(businesses []models.Business) []Marker {
	markers := make([]Marker, 0, len(businesses))
	for i := range businesses {
		b := &businesses[i]
		if !b.HasCoordinates() || !validCoordinate(*b.Latitude, *b.Longitude) {
			continue
		}
		markers = append(markers, toMarker(b))
	}
	return markers
}

// ClusterByLocation группирует маркеры по координатам, округлённым до 6 знаков.
// Кластеры идут в порядке первого появления, маркеры внутри сохраняют входной порядок.
func ClusterByLocation(markers []Marker) []LocationCluster {
	index := make(map[string]int, len(markers))
	clusters := make([]LocationCluster, 0)

	for _, m := range markers {
		lat, lng := round(m.Latitude), round(m.Longitude)
		key := locationKey(lat, lng)

		i, ok := index[key]
		if !ok {
			i = len(clusters)
			index[key] = i
			clusters = append(clusters, LocationCluster{Key: key, Latitude: lat, Longitude: lng})
		}
		clusters[i].Markers = append(clusters[i].Markers, m)
		clusters[i].Count++
	}
	return clusters
}

// ClusterByRegion группирует маркеры по городу, при его отсутствии по региону.
// Координаты кластера равны среднему арифметическому координат участников.
func ClusterByRegion(markers []Marker) []RegionCluster {
	type acc struct {
		latSum, lngSum float64
	}
	index := make(map[string]int, len(markers))
	sums := make([]acc, 0)
	clusters := make([]RegionCluster, 0)

	for _, m := range markers {
		name := regionName(m)
		i, ok := index[name]
		if !ok {
			i = len(clusters)
			index[name] = i
			clusters = append(clusters, RegionCluster{Name: name})
			sums = append(sums, acc{})
		}
		clusters[i].Markers = append(clusters[i].Markers, m)
		clusters[i].Count++
		sums[i].latSum += m.Latitude
		sums[i].lngSum += m.Longitude
	}

	for i := range clusters {
		n := float64(clusters[i].Count)
		clusters[i].Latitude = sums[i].latSum / n
		clusters[i].Longitude = sums[i].lngSum / n
	}
	return clusters
}

// TierForZoom выбирает уровень детализации по масштабу карты.
func TierForZoom(zoom float64) Tier {
	switch {
	case zoom < RegionZoomMax:
		return TierRegion
	case zoom >= LabelZoomMin:
		return TierDetailed
	default:
		return TierOverview
	}
}

// BuildMapView собирает представление карты для масштаба и выбранной компании.
// selected может быть nil. Выбранный кластер ищется на всех уровнях, чтобы
// info-window оставался открытым при смене масштаба.
func BuildMapView(markers []Marker, zoom float64, selected *uuid.UUID) MapView {
	tier := TierForZoom(zoom)
	view := MapView{
		Tier:       tier,
		Zoom:       zoom,
		ShowLabels: tier == TierDetailed,
		Total:      len(markers),
	}

	locations := ClusterByLocation(markers)
	if tier == TierRegion {
		view.Regions = ClusterByRegion(markers)
	} else {
		view.Locations = locations
	}

	if selected != nil {
		for i := range locations {
			if containsMarker(locations[i].Markers, *selected) {
				cluster := locations[i]
				view.Selected = &cluster
				break
			}
		}
	}
	return view
}

func toMarker(b *models.Business) Marker {
	m := Marker{
		ID:           b.ID,
		Name:         b.Name,
		BusinessType: b.BusinessType,
		City:         deref(b.City),
		Region:       deref(b.Region),
		LogoURL:      deref(b.LogoURL),
		Latitude:     *b.Latitude,
		Longitude:    *b.Longitude,
	}

	parts := make([]string, 0, 3)
	for _, p := range []*string{b.StreetAddress, b.Suburb, b.City} {
		if v := deref(p); v != "" {
			parts = append(parts, v)
		}
	}
	m.Address = strings.Join(parts, ", ")
	return m
}

func regionName(m Marker) string {
	if city := strings.TrimSpace(m.City); city != "" {
		return city
	}
	if region := strings.TrimSpace(m.Region); region != "" {
		return region
	}
	return UnknownRegion
}

func containsMarker(markers []Marker, id uuid.UUID) bool {
	for _, m := range markers {
		if m.ID == id {
			return true
		}
	}
	return false
}

// round округляет до coordinatePrecision знаков. -0 приводится к 0, иначе
// точки по разные стороны экватора или нулевого меридиана получат разные ключи.
func round(v float64) float64 {
	p := math.Pow10(coordinatePrecision)
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

func locationKey(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', coordinatePrecision, 64) + "," + strconv.FormatFloat(lng, 'f', coordinatePrecision, 64)
}

func validCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
