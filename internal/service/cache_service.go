package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/classifieds-backend/internal/logger"
)

// Cache хранилище сериализованных ответов с TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}

// CacheService in-memory кеш с TTL, используется когда Redis не настроен.
type CacheService struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewCacheService создаёт кеш и запускает фоновую очистку.
func NewCacheService() *CacheService {
	cs := &CacheService{
		cache: make(map[string]*cacheEntry),
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	go cs.cleanup(5 * time.Minute)

	return cs
}

// Get возвращает значение, если оно есть и не истекло.
func (cs *CacheService) Get(_ context.Context, key string) ([]byte, bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, exists := cs.cache[key]
	if !exists || cs.now().After(entry.expiresAt) {
		// Просроченные записи удаляет cleanup
		return nil, false, nil
	}

	return entry.data, true, nil
}

// Set сохраняет значение с TTL.
func (cs *CacheService) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = &cacheEntry{
		data:      value,
		expiresAt: cs.now().Add(ttl),
	}
	return nil
}

// Delete удаляет ключи.
func (cs *CacheService) Delete(_ context.Context, keys ...string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for _, key := range keys {
		delete(cs.cache, key)
	}
	return nil
}

// DeletePrefix удаляет все ключи с префиксом.
func (cs *CacheService) DeletePrefix(_ context.Context, prefix string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(cs.cache, key)
		}
	}
	return nil
}

// Ping всегда успешен для in-memory кеша.
func (cs *CacheService) Ping(context.Context) error {
	return nil
}

// Close останавливает фоновую очистку.
func (cs *CacheService) Close() {
	cs.once.Do(func() { close(cs.stop) })
}

// cleanup периодически удаляет просроченные записи.
func (cs *CacheService) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stop:
			return
		case <-ticker.C:
			cs.mu.Lock()
			now := cs.now()
			for key, entry := range cs.cache {
				if now.After(entry.expiresAt) {
					delete(cs.cache, key)
				}
			}
			cs.mu.Unlock()
		}
	}
}

// Ключи кеша
const (
	businessPagePrefix = "business:page:"
	mapPrefix          = "map:businesses:"
)

// BusinessPageCacheKey ключ анонимной страницы бизнеса.
func BusinessPageCacheKey(businessID uuid.UUID) string {
	return businessPagePrefix + businessID.String()
}

// MapCacheKey ключ списка бизнесов для карты с фильтром по типу.
func MapCacheKey(businessType string) string {
	if businessType == "" {
		businessType = "all"
	}
	return mapPrefix + businessType
}

// PageCache кеширует JSON ответы страниц и сбрасывает их после изменений.
type PageCache struct {
	cache Cache
	ttl   time.Duration
}

// NewPageCache создаёт кеш страниц поверх Redis или in-memory хранилища.
func NewPageCache(cache Cache, ttl time.Duration) *PageCache {
	return &PageCache{cache: cache, ttl: ttl}
}

// GetJSON читает значение в dst. Ошибки кеша считаются промахом.
func (p *PageCache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	raw, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("page cache: ошибка чтения")
		return false
	}
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// SetJSON сохраняет значение. Ошибка только логируется.
func (p *PageCache) SetJSON(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("page cache: marshal")
		return
	}
	if err := p.cache.Set(ctx, key, raw, p.ttl); err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("page cache: ошибка записи")
	}
}

// RevalidateBusiness сбрасывает страницу бизнеса и списки для карты.
func (p *PageCache) RevalidateBusiness(ctx context.Context, businessID uuid.UUID) {
	if err := p.cache.Delete(ctx, BusinessPageCacheKey(businessID)); err != nil {
		logger.Log.WithFields(logrus.Fields{"business_id": businessID, "error": err}).Warn("page cache: не удалось сбросить страницу")
	}
}

// RevalidateMap сбрасывает все закешированные списки для карты.
func (p *PageCache) RevalidateMap(ctx context.Context) {
	if err := p.cache.DeletePrefix(ctx, mapPrefix); err != nil {
		logger.Log.WithField("error", err).Warn("page cache: не удалось сбросить карту")
	}
}

// Ping проверяет доступность кеша.
func (p *PageCache) Ping(ctx context.Context) error {
	return p.cache.Ping(ctx)
}
