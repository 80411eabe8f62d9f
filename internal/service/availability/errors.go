package availability

import (
	"fmt"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

// ErrInternal возвращается при ошибке чтения бронирований
var ErrInternal = fmt.Errorf("%w: availability: internal error", domain.ErrPersistenceFailure)
