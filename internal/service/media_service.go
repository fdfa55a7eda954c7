package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/classifieds-backend/internal/logger"
	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
	"github.com/ignatzorin/classifieds-backend/internal/repository/common"
	"github.com/ignatzorin/classifieds-backend/internal/storage"
)

// Папки загрузки.
const (
	FolderBusinesses = "businesses"
	FolderListings   = "listings"
	FolderAvatars    = "avatars"
)

// Разрешённые типы файлов (по магическим байтам).
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedFolders = map[string]bool{
	FolderBusinesses: true,
	FolderListings:   true,
	FolderAvatars:    true,
}

// MediaRepository описывает хранение записей о файлах.
type MediaRepository interface {
	Create(ctx context.Context, media *models.MediaFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// UploadInput загружаемый файл.
type UploadInput struct {
	Folder   string
	Filename string
	Size     int64
	Reader   io.Reader
}

// MediaService проверяет и сохраняет изображения компаний, объявлений и аватаров.
type MediaService struct {
	repo     MediaRepository
	store    storage.FileStore
	maxBytes int64
	now      func() time.Time
}

// NewMediaService создаёт сервис загрузки файлов.
func NewMediaService(repo MediaRepository, store storage.FileStore, maxUploadMB int64) *MediaService {
	return &MediaService{
		repo:     repo,
		store:    store,
		maxBytes: maxUploadMB * 1024 * 1024,
		now:      time.Now,
	}
}

// Upload проверяет расширение, реальный тип и размер файла, сохраняет его и пишет запись в media_files.
func (s *MediaService) Upload(ctx context.Context, actor *models.Actor, in UploadInput) (*models.MediaFile, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}

	folder := strings.TrimSpace(in.Folder)
	if folder == "" {
		folder = FolderBusinesses
	}
	if !allowedFolders[folder] {
		return nil, apperror.Validation("недопустимая папка: %s", folder)
	}
	if in.Size <= 0 {
		return nil, apperror.Validation("файл не может быть пустым")
	}
	if in.Size > s.maxBytes {
		return nil, apperror.Validation("размер файла превышает %d МБ", s.maxBytes/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !allowedExtensions[ext] {
		return nil, apperror.Validation("неподдерживаемый формат файла. Разрешены: %s", strings.Join(sortedKeys(allowedExtensions), ", "))
	}

	// Первые 512 байт нужны для проверки магических байтов.
	head := make([]byte, 512)
	n, err := io.ReadFull(in.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperror.Validation("не удалось прочитать файл")
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil, apperror.Validation("не удалось определить тип файла. Разрешены только изображения")
	}
	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		return nil, apperror.Validation("неподдерживаемый тип файла (%s)", contentType)
	}
	if !extensionMatches(ext, kind.Extension) {
		return nil, apperror.Validation("расширение файла (%s) не соответствует реальному типу (.%s)", ext, kind.Extension)
	}

	key := storage.ObjectKey(folder, fmt.Sprintf("%s_%d%s", actor.ID, s.now().UnixNano(), ext))
	obj, err := s.store.Save(ctx, key, contentType, io.MultiReader(bytes.NewReader(head), in.Reader), in.Size)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, apperror.Validation("размер файла превышает %d МБ", s.maxBytes/(1024*1024))
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить файл")
	}

	media := &models.MediaFile{
		UserID:   actor.ID,
		FilePath: obj.Key,
		FileType: contentType,
		FileSize: obj.Size,
		URL:      obj.URL,
	}
	if err := s.repo.Create(ctx, media); err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			logger.Log.WithFields(logrus.Fields{"key": obj.Key, "error": delErr}).Warn("media service: orphan file left in storage")
		}
		return nil, common.MapPgError(err)
	}
	return media, nil
}

// Delete удаляет файл владельца из хранилища и из media_files.
func (s *MediaService) Delete(ctx context.Context, actor *models.Actor, id uuid.UUID) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return common.MapPgError(err)
	}
	if media.UserID != actor.ID {
		return apperror.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id, actor.ID); err != nil {
		return common.MapPgError(err)
	}
	if err := s.store.Delete(ctx, media.FilePath); err != nil {
		logger.Log.WithFields(logrus.Fields{"media_id": id, "key": media.FilePath, "error": err}).Warn("media service: failed to remove file from storage")
	}
	return nil
}

// .jpg и .jpeg это одно и то же.
func extensionMatches(ext, detected string) bool {
	got := strings.TrimPrefix(ext, ".")
	if got == "jpeg" {
		got = "jpg"
	}
	if detected == "jpeg" {
		detected = "jpg"
	}
	return got == detected
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
