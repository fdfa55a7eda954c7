package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/pkg/apperror"
	"github.com/ignatzorin/classifieds-backend/internal/storage"
)

type mockMediaRepo struct {
	mock.Mock
}

func (m *mockMediaRepo) Create(ctx context.Context, media *models.MediaFile) error {
	args := m.Called(ctx, media)
	if args.Error(0) == nil {
		media.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockMediaRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaFile), args.Error(1)
}

func (m *mockMediaRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type memoryFileStore struct {
	files   map[string][]byte
	deleted []string
}

func newMemoryFileStore() *memoryFileStore {
	return &memoryFileStore{files: make(map[string][]byte)}
}

func (s *memoryFileStore) Save(_ context.Context, key, _ string, r io.Reader, _ int64) (*storage.Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.files[key] = data
	return &storage.Object{Key: key, URL: "https://cdn.example.com/" + key, Size: int64(len(data))}, nil
}

func (s *memoryFileStore) Delete(_ context.Context, key string) error {
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func pngBytes() []byte {
	return append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 1024)...)
}

func newMediaFixture() (*mockMediaRepo, *memoryFileStore, *MediaService) {
	repo := new(mockMediaRepo)
	files := newMemoryFileStore()
	svc := NewMediaService(repo, files, 1)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return repo, files, svc
}

func TestMediaService_Upload(t *testing.T) {
	repo, files, svc := newMediaFixture()
	ctx := context.Background()
	user := actor("owner@example.com")
	data := pngBytes()

	repo.On("Create", ctx, mock.AnythingOfType("*models.MediaFile")).Return(nil)

	media, err := svc.Upload(ctx, user, UploadInput{Folder: FolderListings, Filename: "digger.PNG", Size: int64(len(data)), Reader: bytes.NewReader(data)})
	require.NoError(t, err)

	assert.Equal(t, "image/png", media.FileType)
	assert.Equal(t, int64(len(data)), media.FileSize)
	assert.Contains(t, media.FilePath, "listings/"+user.ID.String()+"_")
	assert.Equal(t, "https://cdn.example.com/"+media.FilePath, media.URL)
	assert.Equal(t, data, files.files[media.FilePath])
	repo.AssertExpectations(t)
}

func TestMediaService_Upload_Rejects(t *testing.T) {
	_, _, svc := newMediaFixture()
	ctx := context.Background()
	user := actor("owner@example.com")
	data := pngBytes()

	tests := []struct {
		name  string
		input UploadInput
	}{
		{"bad folder", UploadInput{Folder: "../etc", Filename: "a.png", Size: int64(len(data)), Reader: bytes.NewReader(data)}},
		{"empty", UploadInput{Filename: "a.png", Size: 0, Reader: bytes.NewReader(nil)}},
		{"too large", UploadInput{Filename: "a.png", Size: 2 * 1024 * 1024, Reader: bytes.NewReader(data)}},
		{"bad extension", UploadInput{Filename: "a.exe", Size: int64(len(data)), Reader: bytes.NewReader(data)}},
		{"not an image", UploadInput{Filename: "a.png", Size: 11, Reader: bytes.NewReader([]byte("plain text!"))}},
		{"extension mismatch", UploadInput{Filename: "a.jpg", Size: int64(len(data)), Reader: bytes.NewReader(data)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, user, tt.input)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	_, err := svc.Upload(ctx, nil, UploadInput{})
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestMediaService_Upload_RepoFailureRemovesFile(t *testing.T) {
	repo, files, svc := newMediaFixture()
	ctx := context.Background()
	data := pngBytes()

	repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Upload(ctx, actor("owner@example.com"), UploadInput{Filename: "logo.png", Size: int64(len(data)), Reader: bytes.NewReader(data)})
	require.Error(t, err)
	assert.Empty(t, files.files)
	assert.Len(t, files.deleted, 1)
}

func TestMediaService_Delete(t *testing.T) {
	repo, files, svc := newMediaFixture()
	ctx := context.Background()
	user := actor("owner@example.com")

	media := &models.MediaFile{ID: uuid.New(), UserID: user.ID, FilePath: "avatars/me.png"}
	files.files[media.FilePath] = []byte("x")
	repo.On("GetByID", ctx, media.ID).Return(media, nil)
	repo.On("Delete", ctx, media.ID, user.ID).Return(nil)

	err := svc.Delete(ctx, actor("intruder@example.com"), media.ID)
	assert.True(t, apperror.IsForbidden(err))

	require.NoError(t, svc.Delete(ctx, user, media.ID))
	assert.Equal(t, []string{"avatars/me.png"}, files.deleted)

	missing := uuid.New()
	repo.On("GetByID", ctx, missing).Return(nil, apperror.ErrMediaNotFound)
	assert.True(t, apperror.IsNotFound(svc.Delete(ctx, user, missing)))
}

func TestExtensionMatches(t *testing.T) {
	assert.True(t, extensionMatches(".jpeg", "jpg"))
	assert.True(t, extensionMatches(".jpg", "jpg"))
	assert.True(t, extensionMatches(".png", "png"))
	assert.False(t, extensionMatches(".gif", "png"))
}
