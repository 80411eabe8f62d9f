package check_availability

import (
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// Причины недоступности окна
const (
	ReasonFacilityClosed = "facility_closed"
	ReasonConflict       = "conflict"
)

// Request модель запроса проверки доступности
type Request struct {
	UserID          int64              // ID пользователя (для логирования, не влияет на результат)
	FacilityID      int64              // ID площадки
	StartTime       time.Time          // Начало окна
	EndTime         time.Time          // Конец окна
	BookingType     domain.BookingType // Тип бронирования для оценки стоимости (по умолчанию hourly)
	PricingOptionID *int64             // Ценовая опция для оценки стоимости (опционально)
}

// Response модель ответа проверки доступности
type Response struct {
	FacilityID    int64        `json:"facilityId"`
	StartTime     time.Time    `json:"startTime"`
	EndTime       time.Time    `json:"endTime"`
	Available     bool         `json:"available"`
	Reason        string       `json:"reason,omitempty"`
	EstimatedCost *types.Money `json:"estimatedCost,omitempty"`
	Conflicts     []Window     `json:"conflicts,omitempty"`
}

// Window занятое окно площадки (без данных владельца)
type Window struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    string    `json:"status"`
}
