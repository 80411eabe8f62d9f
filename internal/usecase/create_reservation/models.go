package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID          int64              // ID пользователя (владелец)
	FacilityID      int64              // ID площадки
	StartTime       time.Time          // Начало окна (включительно)
	EndTime         time.Time          // Конец окна (не включительно)
	BookingType     domain.BookingType // hourly или daily
	Purpose         string             // Цель бронирования
	PricingOptionID *int64             // Ценовая опция площадки (опционально)
}
