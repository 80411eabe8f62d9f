package pricing

import (
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// Engine считает стоимость окна бронирования
// Чистая функция от входных данных: без хранилища и часов
// Календарные даты для посуточной оплаты берутся в часовом поясе площадки
type Engine struct {
	loc *time.Location
}

// NewEngine создает движок расчёта стоимости с часовым поясом UTC
func NewEngine() *Engine {
	return &Engine{loc: time.UTC}
}

// WithLocation задаёт часовой пояс для подсчёта календарных дат
func (e *Engine) WithLocation(loc *time.Location) *Engine {
	if loc != nil {
		e.loc = loc
	}
	return e
}

// ComputeCost считает стоимость окна [start, end)
// Базовая ставка - hourly_rate за каждую оплачиваемую единицу (час или день)
// Опция добавляет price_per_hour за единицу, иначе price_per_unit один раз
func (e *Engine) ComputeCost(facility *domain.Facility, start, end time.Time, bookingType domain.BookingType, option *domain.PricingOption) (types.Money, error) {
	if err := domain.ValidateWindow(start, end); err != nil {
		return 0, err
	}

	units, err := e.BilledUnits(start, end, bookingType)
	if err != nil {
		return 0, err
	}

	cost := facility.HourlyRate.Mul(units)

	if option != nil {
		if option.FacilityID != 0 && option.FacilityID != facility.ID {
			return 0, ErrForeignPricingOption
		}
		cost += surcharge(option, units)
	}

	return cost.ClampZero(), nil
}

// BilledUnits возвращает число оплачиваемых единиц
// hourly: целые часы плюс 0.5 при наличии неполного часа (неполная минута считается минутой)
// daily: разница календарных дат + 1, либо 1 для одной даты; даты не зависят от смещения во входных данных
func (e *Engine) BilledUnits(start, end time.Time, bookingType domain.BookingType) (float64, error) {
	switch bookingType {
	case domain.BookingHourly:
		return billedHours(end.Sub(start)), nil
	case domain.BookingDaily:
		return float64(billedDays(start, end, e.loc)), nil
	default:
		return 0, ErrUnknownBookingType
	}
}

func billedHours(d time.Duration) float64 {
	minutes := int64(d / time.Minute)
	if d%time.Minute > 0 {
		minutes++
	}

	hours := float64(minutes / 60)
	if minutes%60 > 0 {
		hours += 0.5
	}
	return hours
}

func billedDays(start, end time.Time, loc *time.Location) int {
	startDate := dateOf(start, loc)
	endDate := dateOf(end, loc)

	// Счёт по календарным датам, а не по длительности
	days := 0
	for d := startDate; d.Before(endDate); d = d.AddDate(0, 0, 1) {
		days++
	}

	if days == 0 {
		return 1
	}
	return days + 1
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func surcharge(option *domain.PricingOption, units float64) types.Money {
	switch {
	case option.PricePerHour != nil:
		return option.PricePerHour.Mul(units)
	case option.PricePerUnit != nil:
		return *option.PricePerUnit
	default:
		return 0
	}
}
