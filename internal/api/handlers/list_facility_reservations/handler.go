package list_facility_reservations

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-FacilityBooking/internal/api/handlers"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations"
)

// PaymentStatusParam query-параметр фильтра по статусу оплаты
const PaymentStatusParam = "paymentStatus"

const (
	msgInvalidFacilityID = "некорректный ID площадки"
	msgInvalidStatus     = "неизвестный статус оплаты"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/facilities/{facilityId}/reservations?paymentStatus=
// Только для администратора; paymentStatus=uploaded - очередь квитанций на проверку
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := handlers.PathInt64(r, "facilityId")
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/reservations - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	paymentStatus := r.URL.Query().Get(PaymentStatusParam)

	list, err := h.service.ListFacilityReservations(r.Context(), facilityID, paymentStatus)
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidStatusFilter) {
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /facilities/{id}/reservations - Failed to list reservations: facility_id=%d, error=%v", facilityID, err)
		handlers.RespondCategoryError(w, err)
		return
	}

	h.logger.Info("GET /facilities/{id}/reservations - Reservations listed: facility_id=%d, payment_status=%q, total=%d",
		facilityID, paymentStatus, list.Total)
	handlers.RespondJSON(w, http.StatusOK, list)
}
