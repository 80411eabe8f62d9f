package facility

import "errors"

var (
	// ErrEncode возвращается при ошибке сериализации площадки для кеша
	ErrEncode = errors.New("facility.cache: failed to encode facility")

	// ErrInvalidate возвращается при ошибке удаления записи из кеша
	ErrInvalidate = errors.New("facility.cache: failed to invalidate entry")
)
