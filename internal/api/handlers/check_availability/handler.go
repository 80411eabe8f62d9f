package check_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/api/handlers"
	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	checkAvailability "github.com/m04kA/SMC-FacilityBooking/internal/usecase/check_availability"
)

const (
	msgInvalidFacilityID      = "некорректный ID площадки"
	msgMissingWindow          = "параметры start и end обязательны"
	msgInvalidTime            = "некорректный формат времени, ожидается RFC3339"
	msgInvalidPricingOptionID = "некорректный ID ценовой опции"
	msgFacilityNotFound       = "площадка не найдена"
	msgPricingOptionNotFound  = "ценовая опция не найдена"
	msgInvalidWindow          = "начало окна должно быть раньше окончания"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/facilities/{facilityId}/availability
// Query params: start, end (RFC3339, обязательны), bookingType, pricingOptionId
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := handlers.PathInt64(r, "facilityId")
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/availability - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	query := r.URL.Query()
	startStr, endStr := query.Get("start"), query.Get("end")
	if startStr == "" || endStr == "" {
		h.logger.Warn("GET /facilities/{id}/availability - Missing window: facility_id=%d", facilityID)
		handlers.RespondBadRequest(w, msgMissingWindow)
		return
	}

	start, err := time.Parse(domain.TimeLayout, startStr)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/availability - Invalid start: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}
	end, err := time.Parse(domain.TimeLayout, endStr)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/availability - Invalid end: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	req := &checkAvailability.Request{
		FacilityID:  facilityID,
		StartTime:   start,
		EndTime:     end,
		BookingType: domain.BookingType(query.Get("bookingType")),
	}

	if optionStr := query.Get("pricingOptionId"); optionStr != "" {
		optionID, err := strconv.ParseInt(optionStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /facilities/{id}/availability - Invalid pricing option ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPricingOptionID)
			return
		}
		req.PricingOptionID = &optionID
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrFacilityNotFound):
			h.logger.Warn("GET /facilities/{id}/availability - Facility not found: facility_id=%d", facilityID)
			handlers.RespondNotFound(w, msgFacilityNotFound)

		case errors.Is(err, checkAvailability.ErrPricingOptionNotFound):
			h.logger.Warn("GET /facilities/{id}/availability - Pricing option not found: facility_id=%d", facilityID)
			handlers.RespondNotFound(w, msgPricingOptionNotFound)

		case errors.Is(err, domain.ErrInvalidWindow):
			h.logger.Warn("GET /facilities/{id}/availability - Invalid window: facility_id=%d", facilityID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgInvalidWindow)

		case errors.Is(err, domain.ErrPersistenceFailure):
			h.logger.Error("GET /facilities/{id}/availability - Failed to check availability: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Warn("GET /facilities/{id}/availability - Rejected: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondCategoryError(w, err)
		}
		return
	}

	h.logger.Info("GET /facilities/{id}/availability - Checked: facility_id=%d, available=%t", facilityID, result.Available)
	handlers.RespondJSON(w, http.StatusOK, result)
}
