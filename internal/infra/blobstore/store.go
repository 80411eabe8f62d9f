package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const refPrefix = "slip/"

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// FileStore хранит квитанции об оплате в локальной директории
// Ссылка имеет вид slip/<uuid><ext>
type FileStore struct {
	dir     string
	maxSize int64
}

// NewFileStore создает хранилище в директории dir (создаётся при необходимости)
// maxSize <= 0 отключает ограничение размера
func NewFileStore(dir string, maxSize int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create dir %s: %v", ErrWrite, dir, err)
	}
	return &FileStore{dir: dir, maxSize: maxSize}, nil
}

// Store сохраняет содержимое и возвращает непрозрачную ссылку
// filename используется только для определения расширения
func (s *FileStore) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + extension(filename)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	written, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrWrite, copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrWrite, closeErr)
	case s.maxSize > 0 && written > s.maxSize:
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.maxSize)
	}

	return refPrefix + name, nil
}

// Delete удаляет блоб по ссылке
func (s *FileStore) Delete(_ context.Context, ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("%w: delete %s: %v", ErrWrite, ref, err)
	}
	return nil
}

// Open открывает блоб для чтения
func (s *FileStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *FileStore) resolve(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, refPrefix)
	if !ok {
		return "", ErrInvalidRef
	}

	ext := filepath.Ext(name)
	if _, err := uuid.Parse(strings.TrimSuffix(name, ext)); err != nil {
		return "", ErrInvalidRef
	}
	if ext != "" && !extPattern.MatchString(ext) {
		return "", ErrInvalidRef
	}

	return filepath.Join(s.dir, name), nil
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}
