package models

// EndorsementCategory константы категорий для адресных одобрений и тегов рекомендаций.
const (
	CategoryQualityOfWork   = "Quality of Work"
	CategoryReliability     = "Reliability"
	CategoryCommunication   = "Communication"
	CategoryValueForMoney   = "Value for Money"
	CategoryProfessionalism = "Professionalism"
	CategoryTimeliness      = "Timeliness"
	CategorySafety          = "Safety"
	CategoryExpertise       = "Expertise"
)

// EndorsementCategories фиксированный порядок категорий (используется при сортировке).
var EndorsementCategories = []string{
	CategoryQualityOfWork,
	CategoryReliability,
	CategoryCommunication,
	CategoryValueForMoney,
	CategoryProfessionalism,
	CategoryTimeliness,
	CategorySafety,
	CategoryExpertise,
}

// RelationshipType константы типов отношений рекомендателя с бизнесом.
const (
	RelationshipPastClient      = "Past Client"
	RelationshipCurrentClient   = "Current Client"
	RelationshipSupplier        = "Supplier"
	RelationshipSubcontractor   = "Subcontractor"
	RelationshipBusinessPartner = "Business Partner"
	RelationshipFormerEmployee  = "Former Employee"
	RelationshipOther           = "Other"
)

// MaxRecommendationTags предельное количество тегов в рекомендации.
const MaxRecommendationTags = 3

// GeocodingStatus константы статусов геокодирования адреса бизнеса.
const (
	GeocodingPending = "pending"
	GeocodingSuccess = "success"
	GeocodingFailed  = "failed"
)

// ListingStatus константы статусов объявлений.
const (
	ListingStatusDraft     = "draft"
	ListingStatusPublished = "published"
	ListingStatusArchived  = "archived"
)

// NotificationType константы типов уведомлений.
const (
	NotificationEndorsement         = "endorsement"
	NotificationCategoryEndorsement = "category_endorsement"
	NotificationRecommendation      = "recommendation"
	NotificationContactRequest      = "contact_request"
)

// ValidEndorsementCategories множество допустимых категорий (и тегов).
var ValidEndorsementCategories = toSet(EndorsementCategories)

// ValidRelationshipTypes множество допустимых типов отношений.
var ValidRelationshipTypes = map[string]struct{}{
	RelationshipPastClient:      {},
	RelationshipCurrentClient:   {},
	RelationshipSupplier:        {},
	RelationshipSubcontractor:   {},
	RelationshipBusinessPartner: {},
	RelationshipFormerEmployee:  {},
	RelationshipOther:           {},
}

// ValidGeocodingStatuses множество допустимых статусов геокодирования.
var ValidGeocodingStatuses = map[string]struct{}{
	GeocodingPending: {},
	GeocodingSuccess: {},
	GeocodingFailed:  {},
}

// ValidListingStatuses множество допустимых статусов объявлений.
var ValidListingStatuses = map[string]struct{}{
	ListingStatusDraft:     {},
	ListingStatusPublished: {},
	ListingStatusArchived:  {},
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
