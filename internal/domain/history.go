package domain

import (
	"time"

	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

// HistoryAction names a recorded lifecycle mutation
type HistoryAction string

const (
	HistoryCancel     HistoryAction = "cancel"
	HistoryReschedule HistoryAction = "reschedule"
	HistoryExtend     HistoryAction = "extend"
	HistoryExpire     HistoryAction = "expire"
	HistoryVerify     HistoryAction = "verify"
	HistoryStartUsage HistoryAction = "start_usage"
)

// ReservationHistory is an audit record written in the same transaction as the mutation
type ReservationHistory struct {
	ID            int64
	ReservationID int64
	Action        HistoryAction
	ActorUserID   *int64 // nil for system actions
	Reason        *string
	OldStart      *time.Time
	OldEnd        *time.Time
	NewStart      *time.Time
	NewEnd        *time.Time
	OldAmount     *types.Money
	NewAmount     *types.Money
	CreatedAt     time.Time
}
