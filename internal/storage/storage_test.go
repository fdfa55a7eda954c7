package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "businesses/logo.png", ObjectKey("businesses", "logo.png"))
	assert.Equal(t, "etc/passwd", ObjectKey("../../etc", "passwd"))
	assert.Equal(t, "avatars/x.png", ObjectKey("avatars", "../../x.png"))
	assert.Equal(t, "photo", ObjectKey("", ""))
}

func TestPhotoStorage_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewPhotoStorage(root, "http://localhost:8080/media/", 1)
	require.NoError(t, err)
	ctx := context.Background()

	obj, err := s.Save(ctx, "listings/a.png", "image/png", strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, "listings/a.png", obj.Key)
	assert.Equal(t, "http://localhost:8080/media/listings/a.png", obj.URL)
	assert.EqualValues(t, 5, obj.Size)

	data, err := os.ReadFile(filepath.Join(root, "listings", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, obj.Key))
	_, err = os.Stat(filepath.Join(root, "listings", "a.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, obj.Key))
}

func TestPhotoStorage_TooLarge(t *testing.T) {
	root := t.TempDir()
	s, err := NewPhotoStorage(root, "", 1)
	require.NoError(t, err)

	big := strings.NewReader(strings.Repeat("x", 1024*1024+1))
	_, err = s.Save(context.Background(), "avatars/big.png", "image/png", big, 0)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, statErr := os.Stat(filepath.Join(root, "avatars", "big.png.tmp"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPublicReadPolicy(t *testing.T) {
	var policy struct {
		Statement []struct {
			Action   []string
			Resource []string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(publicReadPolicy("media")), &policy))
	require.Len(t, policy.Statement, 1)
	assert.Equal(t, []string{"s3:GetObject"}, policy.Statement[0].Action)
	assert.Equal(t, []string{"arn:aws:s3:::media/*"}, policy.Statement[0].Resource)
}
