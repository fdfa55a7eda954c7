package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/classifieds-backend/internal/config"
	"github.com/ignatzorin/classifieds-backend/internal/http/handlers"
	"github.com/ignatzorin/classifieds-backend/internal/http/middleware"
	"github.com/ignatzorin/classifieds-backend/internal/service"
)

// SetupRouter собирает таблицу маршрутов. mediaRoot каталог локального
// хранилища файлов, пустой при работе через MinIO. rateStore может быть nil.
func SetupRouter(
	cfg *config.Config,
	tokenManager *service.TokenManager,
	mediaRoot string,
	rateStore limiter.Store,
	businessHandler *handlers.BusinessHandler,
	endorsementHandler *handlers.EndorsementHandler,
	listingHandler *handlers.ListingHandler,
	contactHandler *handlers.ContactHandler,
	mediaHandler *handlers.MediaHandler,
	mapHandler *handlers.MapHandler,
	notificationHandler *handlers.NotificationHandler,
	profileHandler *handlers.ProfileHandler,
	healthHandler *handlers.HealthHandler,
	wsHandler *handlers.WSHandler,
	seedHandler *handlers.SeedHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	if mediaRoot != "" {
		r.StaticFS("/media", http.Dir(mediaRoot))
	}

	auth := middleware.AuthMiddleware(tokenManager)
	optionalAuth := middleware.OptionalAuth(tokenManager)
	limited := middleware.RateLimitMiddleware(rateStore, cfg.RateLimitLimit, cfg.RateLimitPeriod)
	validID := middleware.UUIDValidator("id")

	api := r.Group("/api")
	api.GET("/ws", wsHandler.Handle)

	// Компании и доверие.
	businesses := api.Group("/businesses")
	{
		businesses.GET("", businessHandler.ListBusinesses)
		businesses.GET("/:id", validID, optionalAuth, businessHandler.GetBusiness)
		businesses.GET("/:id/trust", validID, optionalAuth, endorsementHandler.GetTrustSummary)

		businesses.POST("", auth, businessHandler.CreateBusiness)
		businesses.PUT("/:id", validID, auth, businessHandler.UpdateBusiness)
		businesses.PUT("/:id/location", validID, auth, businessHandler.UpdateLocation)
		businesses.DELETE("/:id", validID, auth, businessHandler.DeleteBusiness)

		businesses.POST("/:id/endorsement", validID, auth, endorsementHandler.ToggleEndorsement)
		businesses.POST("/:id/category-endorsements", validID, auth, endorsementHandler.ToggleCategoryEndorsement)
		businesses.PUT("/:id/recommendation", validID, auth, endorsementHandler.UpsertRecommendation)
		businesses.DELETE("/:id/recommendation", validID, auth, endorsementHandler.RemoveRecommendation)
	}

	// Объявления.
	listings := api.Group("/listings/:category")
	{
		listings.GET("", listingHandler.ListPublished)
		listings.GET("/:id", validID, optionalAuth, listingHandler.GetListing)
		listings.POST("", auth, listingHandler.CreateDraft)
		listings.PUT("/:id", validID, auth, listingHandler.UpdateListing)
		listings.POST("/:id/publish", validID, auth, listingHandler.Publish)
		listings.POST("/:id/archive", validID, auth, listingHandler.Archive)
		listings.DELETE("/:id", validID, auth, listingHandler.DeleteListing)
	}

	// Карта.
	api.GET("/map/config", mapHandler.Config)
	api.GET("/map/businesses", mapHandler.Businesses)

	// Обращения и загрузки ограничены по IP.
	api.POST("/contact-business", limited, auth, contactHandler.ContactBusiness)
	api.POST("/upload", limited, auth, mediaHandler.Upload)
	api.DELETE("/media/:id", validID, auth, mediaHandler.DeleteMedia)

	// Демо-данные только для разработки.
	if seedHandler != nil && cfg.Env == "development" {
		api.POST("/seed", auth, seedHandler.Seed)
	}

	protected := api.Group("")
	protected.Use(auth)
	{
		protected.GET("/me/businesses", businessHandler.ListMyBusinesses)
		protected.GET("/me/listings", listingHandler.ListMyListings)

		protected.GET("/profile", profileHandler.GetProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", validID, notificationHandler.MarkAsRead)
		protected.DELETE("/notifications/:id", validID, notificationHandler.DeleteNotification)
	}

	return r
}
