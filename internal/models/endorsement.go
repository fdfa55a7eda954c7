package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Endorsement простое одобрение бизнеса пользователем, одно на пару (business, user).
type Endorsement struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CategoryEndorsement одобрение в рамках одной категории.
type CategoryEndorsement struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Category   string    `db:"category" json:"category"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Recommendation развёрнутая рекомендация с типом отношений и тегами.
type Recommendation struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	BusinessID       uuid.UUID      `db:"business_id" json:"business_id"`
	UserID           uuid.UUID      `db:"user_id" json:"user_id"`
	RelationshipType string         `db:"relationship_type" json:"relationship_type"`
	Tags             pq.StringArray `db:"tags" json:"tags"`
	RecommenderName  string         `db:"recommender_name" json:"recommender_name"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// ProfileView событие просмотра профиля бизнеса.
type ProfileView struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	BusinessID uuid.UUID  `db:"business_id" json:"business_id"`
	ViewerID   *uuid.UUID `db:"viewer_id" json:"viewer_id,omitempty"`
	IPHash     *string    `db:"ip_hash" json:"-"`
	ViewedAt   time.Time  `db:"viewed_at" json:"viewed_at"`
}

// CategoryCount счётчик одобрений по категории.
type CategoryCount struct {
	Category          string `json:"category"`
	Count             int    `json:"count"`
	ViewerHasEndorsed bool   `json:"viewer_has_endorsed"`
}

// TrustSummary агрегированная сводка доверия к бизнесу.
type TrustSummary struct {
	BusinessID            uuid.UUID        `json:"business_id"`
	TotalEndorsements     int              `json:"total_endorsements"`
	TotalRecommendations  int              `json:"total_recommendations"`
	ViewsLast30Days       int              `json:"views_last_30_days"`
	ViewerHasEndorsed     bool             `json:"viewer_has_endorsed"`
	ViewerHasRecommended  bool             `json:"viewer_has_recommended"`
	Categories            []CategoryCount  `json:"categories"`
	RecentRecommendations []Recommendation `json:"recent_recommendations"`
	RelationshipBreakdown map[string]int   `json:"relationship_breakdown"`
}
