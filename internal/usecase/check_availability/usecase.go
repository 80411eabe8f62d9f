package check_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	facilityRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/facility"
)

// UseCase use case для проверки доступности окна площадки
// Результат справочный: создание бронирования повторяет проверку в транзакции
type UseCase struct {
	facilities FacilityReader
	checker    AvailabilityChecker
	pricing    PricingEngine
	logger     Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	facilities FacilityReader,
	checker AvailabilityChecker,
	pricing PricingEngine,
	logger Logger,
) *UseCase {
	return &UseCase{
		facilities: facilities,
		checker:    checker,
		pricing:    pricing,
		logger:     logger,
	}
}

// Execute выполняет use case проверки доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckAvailability: user=%d, facility=%d, window=[%s,%s)",
		req.UserID, req.FacilityID, req.StartTime.Format(domain.TimeLayout), req.EndTime.Format(domain.TimeLayout))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем площадку
	facility, err := uc.facilities.GetByID(ctx, req.FacilityID)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			uc.logger.Warn("CheckAvailability: facility id=%d not found", req.FacilityID)
			return nil, ErrFacilityNotFound
		}
		uc.logger.Error("CheckAvailability: failed to get facility id=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: failed to get facility: %w", ErrInternal, err)
	}

	response := &Response{
		FacilityID: facility.ID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}

	// 3. Площадка закрыта на мероприятие
	if facility.IsClosedFor(req.StartTime) {
		uc.logger.Info("CheckAvailability: facility id=%d is closed for event", facility.ID)
		response.Reason = ReasonFacilityClosed
		return response, nil
	}

	// 4. Ищем пересечения
	conflicts, err := uc.checker.Conflicts(ctx, facility.ID, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		response.Reason = ReasonConflict
		response.Conflicts = make([]Window, 0, len(conflicts))
		for _, c := range conflicts {
			response.Conflicts = append(response.Conflicts, Window{
				StartTime: c.StartTime,
				EndTime:   c.EndTime,
				Status:    string(c.Status),
			})
		}
		return response, nil
	}

	// 5. Оценка стоимости
	var option *domain.PricingOption
	if req.PricingOptionID != nil {
		found, ok := facility.FindPricingOption(*req.PricingOptionID)
		if !ok {
			uc.logger.Warn("CheckAvailability: pricing option id=%d not found for facility id=%d", *req.PricingOptionID, facility.ID)
			return nil, ErrPricingOptionNotFound
		}
		option = found
	}

	cost, err := uc.pricing.ComputeCost(facility, req.StartTime, req.EndTime, req.BookingType, option)
	if err != nil {
		return nil, err
	}

	response.Available = true
	response.EstimatedCost = &cost

	uc.logger.Info("CheckAvailability: facility id=%d window available, estimated cost=%s", facility.ID, cost)

	return response, nil
}
