// Package storage сохраняет загруженные файлы в MinIO или на локальный диск.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrTooLarge возвращается, когда файл превышает лимит хранилища.
var ErrTooLarge = errors.New("storage: размер файла превышает лимит")

// Object описывает сохранённый файл.
type Object struct {
	Key  string
	URL  string
	Size int64
}

// FileStore общее поведение хранилищ файлов.
type FileStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader, size int64) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey собирает ключ вида <folder>/<name>, убирая выход за пределы каталога.
func ObjectKey(folder, name string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	name = sanitizeFilename(name)
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
