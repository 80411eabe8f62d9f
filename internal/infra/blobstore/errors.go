package blobstore

import "errors"

var (
	// ErrInvalidRef возвращается для ссылки, не выданной хранилищем
	ErrInvalidRef = errors.New("blobstore: invalid blob reference")

	// ErrBlobNotFound возвращается, когда блоб не найден
	ErrBlobNotFound = errors.New("blobstore: blob not found")

	// ErrWrite возвращается при ошибке записи блоба
	ErrWrite = errors.New("blobstore: failed to write blob")

	// ErrTooLarge возвращается, когда блоб превышает лимит размера
	ErrTooLarge = errors.New("blobstore: blob too large")
)
