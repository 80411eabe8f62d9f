package models

import (
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// Request модели

// CancelRequest запрос на отмену бронирования
type CancelRequest struct {
	ReservationID int64
	UserID        int64
	Reason        string
}

// RescheduleRequest запрос на перенос бронирования
type RescheduleRequest struct {
	ReservationID int64
	UserID        int64
	NewStart      time.Time
	NewEnd        time.Time
	Reason        string
}

// ExtendRequest запрос на продление бронирования
type ExtendRequest struct {
	ReservationID int64
	UserID        int64
	NewEnd        time.Time
	Reason        string
}

// Response модели

// CancelResult результат отмены
// Деньги не перемещаются: сумма возврата передаётся дальше событием
type CancelResult struct {
	RefundFraction float64     `json:"refundFraction"`
	RefundAmount   types.Money `json:"refundAmount"`
	Message        string      `json:"message"`
}

// RescheduleResult результат переноса
type RescheduleResult struct {
	CostDifference types.Money `json:"costDifference"`
	NewTotal       types.Money `json:"newTotal"`
	Message        string      `json:"message"`
}

// ExtendResult результат продления
type ExtendResult struct {
	AdditionalCost types.Money `json:"additionalCost"`
	NewTotal       types.Money `json:"newTotal"`
	Message        string      `json:"message"`
}

// ReservationResponse модель бронирования для API
type ReservationResponse struct {
	ID                 int64       `json:"id"`
	FacilityID         int64       `json:"facilityId"`
	UserID             int64       `json:"userId"`
	StartTime          time.Time   `json:"startTime"`
	EndTime            time.Time   `json:"endTime"`
	BookingType        string      `json:"bookingType"`
	TotalAmount        types.Money `json:"totalAmount"`
	Purpose            string      `json:"purpose"`
	PricingOptionID    *int64      `json:"pricingOptionId,omitempty"`
	Status             string      `json:"status"`
	PaymentStatus      string      `json:"paymentStatus"`
	PaymentDueAt       time.Time   `json:"paymentDueAt"`
	PaymentSlipRef     *string     `json:"paymentSlipRef,omitempty"`
	UsageStartedAt     *time.Time  `json:"usageStartedAt,omitempty"`
	CancellationReason *string     `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time  `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// FromDomainReservation конвертирует domain модель в response
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:                 r.ID,
		FacilityID:         r.FacilityID,
		UserID:             r.UserID,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		BookingType:        string(r.BookingType),
		TotalAmount:        r.TotalAmount,
		Purpose:            r.Purpose,
		PricingOptionID:    r.PricingOptionID,
		Status:             string(r.Status),
		PaymentStatus:      string(r.PaymentStatus),
		PaymentDueAt:       r.PaymentDueAt,
		PaymentSlipRef:     r.PaymentSlipRef,
		UsageStartedAt:     r.UsageStartedAt,
		CancellationReason: r.CancellationReason,
		CancelledAt:        r.CancelledAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// ReservationList список бронирований для API
type ReservationList struct {
	Reservations []*ReservationResponse `json:"reservations"`
	Total        int                    `json:"total"`
}

// FromDomainReservations конвертирует список domain моделей в response
func FromDomainReservations(list []*domain.Reservation) *ReservationList {
	result := &ReservationList{
		Reservations: make([]*ReservationResponse, 0, len(list)),
		Total:        len(list),
	}
	for _, r := range list {
		result.Reservations = append(result.Reservations, FromDomainReservation(r))
	}
	return result
}
