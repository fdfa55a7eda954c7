package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ignatzorin/classifieds-backend/internal/config"
	"github.com/ignatzorin/classifieds-backend/internal/db"
	"github.com/ignatzorin/classifieds-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/classifieds-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/classifieds-backend/internal/http/router"
	"github.com/ignatzorin/classifieds-backend/internal/logger"
	"github.com/ignatzorin/classifieds-backend/internal/repository"
	"github.com/ignatzorin/classifieds-backend/internal/service"
	"github.com/ignatzorin/classifieds-backend/internal/storage"
	"github.com/ignatzorin/classifieds-backend/internal/validation"
	"github.com/ignatzorin/classifieds-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}
	log := logger.Log

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	if err := validation.RegisterBindingTags(); err != nil {
		log.Fatalf("main: %v", err)
	}

	// Кеш страниц: Redis, если настроен, иначе память процесса.
	// Счётчики rate limit делят тот же Redis, чтобы лимит был общим для всех реплик.
	var (
		cache     service.Cache
		rateStore limiter.Store
	)
	if cfg.RedisURL != "" {
		client, err := service.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("main: ошибка подключения к Redis: %v", err)
		}
		defer client.Close()
		cache = service.NewRedisCache(client)
		rateStore, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "classifieds:limiter"})
		if err != nil {
			log.Fatalf("main: не удалось создать хранилище rate limit: %v", err)
		}
		log.Info("main: кеш страниц и rate limit в Redis")
	} else {
		memory := service.NewCacheService()
		defer memory.Close()
		cache = memory
		log.Info("main: REDIS_URL не задан, кеш страниц в памяти")
	}
	pages := service.NewPageCache(cache, cfg.CacheTTL)

	// Хранилище файлов.
	var (
		files     storage.FileStore
		mediaRoot string
	)
	if cfg.UseObjectStorage() {
		files, err = storage.NewMinIOStorage(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		})
		if err != nil {
			log.Fatalf("main: не удалось подключиться к MinIO: %v", err)
		}
	} else {
		photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.PublicBaseURL+"/media", cfg.MaxUploadSizeMB)
		if err != nil {
			log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
		}
		files = photoStorage
		mediaRoot = photoStorage.Root()
	}

	tokenManager := service.NewTokenManager(cfg.AuthJWTSecret)
	background := goroutine.NewRecoveryHandler(logger.Recovery())

	// Репозитории.
	businessRepo := repository.NewBusinessRepository(dbConn)
	endorsementRepo := repository.NewEndorsementRepository(dbConn)
	recommendationRepo := repository.NewRecommendationRepository(dbConn)
	viewRepo := repository.NewProfileViewRepository(dbConn)
	profileRepo := repository.NewProfileRepository(dbConn)
	listingRepo := repository.NewListingRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, hub)
	endorsementService := service.NewEndorsementService(endorsementRepo, recommendationRepo, viewRepo, businessRepo, profileRepo, notificationService, pages, background)
	businessService := service.NewBusinessService(businessRepo, viewRepo, endorsementService, pages, background, cfg.IPHashKey)
	listingService := service.NewListingService(listingRepo)
	mapService := service.NewMapService(businessRepo, pages, cfg.MapsAPIKey)
	contactService := service.NewContactService(businessRepo, profileRepo, notificationService, service.NewResendEmailer(cfg.ResendAPIKey, cfg.ContactFromEmail))
	mediaService := service.NewMediaService(mediaRepo, files, cfg.MaxUploadSizeMB)
	profileService := service.NewProfileService(profileRepo)
	seedService := service.NewSeedService(businessRepo, listingRepo, pages)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, tokenManager, mediaRoot, rateStore,
		httpHandlers.NewBusinessHandler(businessService),
		httpHandlers.NewEndorsementHandler(endorsementService),
		httpHandlers.NewListingHandler(listingService),
		httpHandlers.NewContactHandler(contactService),
		httpHandlers.NewMediaHandler(mediaService),
		httpHandlers.NewMapHandler(mapService),
		httpHandlers.NewNotificationHandler(notificationService),
		httpHandlers.NewProfileHandler(profileService),
		httpHandlers.NewHealthHandler(dbConn, pages),
		httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		httpHandlers.NewSeedHandler(seedService),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	log.WithFields(logrus.Fields{"port": cfg.HTTPPort, "env": cfg.Env}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}

	// Дожидаемся фоновых записей (просмотры, уведомления) перед закрытием базы.
	background.Wait()
	log.Info("main: сервер остановлен")
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
