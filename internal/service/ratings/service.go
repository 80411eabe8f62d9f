package ratings

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	facilityRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/facility"
	ratingRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/rating"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/ratings/models"
	"github.com/m04kA/SMC-FacilityBooking/pkg/clock"
)

// Service агрегатор оценок площадок
// Сводка на площадке всегда пересчитывается из полного набора неудалённых оценок
type Service struct {
	ratingRepo   RatingRepository
	facilityRepo FacilityRepository
	cache        FacilityCache
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса оценок
// cache может быть nil, если кэш площадок отключен
func NewService(
	ratingRepo RatingRepository,
	facilityRepo FacilityRepository,
	cache FacilityCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		ratingRepo:   ratingRepo,
		facilityRepo: facilityRepo,
		cache:        cache,
		txManager:    txManager,
		timeProvider: clock.Real{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Aggregate считает сводку: среднее с округлением до 2 знаков, количество, разбивку 1..5
func Aggregate(values []int) domain.RatingSummary {
	summary := domain.EmptyRatingSummary()
	if len(values) == 0 {
		return summary
	}

	sum := 0
	for _, v := range values {
		sum += v
		summary.Breakdown[v]++
	}

	summary.TotalRatings = len(values)
	summary.AverageRating = math.Round(float64(sum)/float64(len(values))*100) / 100
	return summary
}

// AddRating сохраняет оценку и пересчитывает сводку площадки
func (s *Service) AddRating(ctx context.Context, req *models.AddRatingRequest) (*models.RatingResponse, error) {
	s.logger.Info("AddRating: facility=%d user=%d rating=%d", req.FacilityID, req.UserID, req.Rating)

	if !domain.IsValidRatingValue(req.Rating) {
		return nil, ErrInvalidRating
	}
	if req.Comment != nil && len(*req.Comment) > domain.MaxCommentLength {
		return nil, ErrCommentTooLong
	}

	var created *domain.Rating

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.facilityRepo.GetByIDForUpdate(txCtx, req.FacilityID); err != nil {
			return repoError("AddRating", err)
		}

		rating, err := s.ratingRepo.Create(txCtx, &domain.Rating{
			FacilityID: req.FacilityID,
			UserID:     req.UserID,
			Rating:     req.Rating,
			Comment:    req.Comment,
			CreatedAt:  s.timeProvider.Now(),
		})
		if err != nil {
			return repoError("AddRating", err)
		}

		if _, err := s.recompute(txCtx, req.FacilityID); err != nil {
			return err
		}

		created = rating
		return nil
	})
	if err != nil {
		err = txError("AddRating", err)
		s.logFailure("AddRating", req.FacilityID, err)
		return nil, err
	}

	s.invalidate(ctx, req.FacilityID)
	s.logger.Info("AddRating: rating id=%d added to facility=%d", created.ID, req.FacilityID)

	return models.FromDomainRating(created), nil
}

// DeleteRating мягко удаляет оценку владельцем и пересчитывает сводку площадки
func (s *Service) DeleteRating(ctx context.Context, facilityID, ratingID, userID int64) error {
	s.logger.Info("DeleteRating: facility=%d rating=%d user=%d", facilityID, ratingID, userID)
	return s.removeRating(ctx, "DeleteRating", facilityID, ratingID, func(rating *domain.Rating) error {
		if rating.UserID != userID {
			return ErrNotOwner
		}
		return nil
	})
}

// ModerateRating мягко удаляет любую оценку площадки (администратор)
func (s *Service) ModerateRating(ctx context.Context, facilityID, ratingID, actorID int64) error {
	s.logger.Info("ModerateRating: facility=%d rating=%d actor=%d", facilityID, ratingID, actorID)
	return s.removeRating(ctx, "ModerateRating", facilityID, ratingID, nil)
}

// removeRating удаляет оценку и пересчитывает сводку в одной транзакции
// allow проверяет право на удаление; nil - без проверки
func (s *Service) removeRating(ctx context.Context, op string, facilityID, ratingID int64, allow func(*domain.Rating) error) error {
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.facilityRepo.GetByIDForUpdate(txCtx, facilityID); err != nil {
			return repoError(op, err)
		}

		rating, err := s.ratingRepo.GetByID(txCtx, ratingID)
		if err != nil {
			return repoError(op, err)
		}
		if rating.FacilityID != facilityID {
			return ErrRatingNotFound
		}
		if allow != nil {
			if err := allow(rating); err != nil {
				return err
			}
		}

		if err := s.ratingRepo.SoftDelete(txCtx, ratingID, s.timeProvider.Now()); err != nil {
			return repoError(op, err)
		}

		_, err = s.recompute(txCtx, facilityID)
		return err
	})
	if err != nil {
		err = txError(op, err)
		s.logFailure(op, facilityID, err)
		return err
	}

	s.invalidate(ctx, facilityID)
	s.logger.Info("%s: rating id=%d removed from facility=%d", op, ratingID, facilityID)

	return nil
}

// Recompute пересчитывает сводку площадки из неудалённых оценок
func (s *Service) Recompute(ctx context.Context, facilityID int64) (*models.SummaryResponse, error) {
	var summary domain.RatingSummary

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.facilityRepo.GetByIDForUpdate(txCtx, facilityID); err != nil {
			return repoError("Recompute", err)
		}

		var err error
		summary, err = s.recompute(txCtx, facilityID)
		return err
	})
	if err != nil {
		err = txError("Recompute", err)
		s.logFailure("Recompute", facilityID, err)
		return nil, err
	}

	s.invalidate(ctx, facilityID)
	s.logger.Info("Recompute: facility=%d average=%.2f total=%d", facilityID, summary.AverageRating, summary.TotalRatings)

	return models.FromDomainSummary(facilityID, summary), nil
}

func (s *Service) recompute(ctx context.Context, facilityID int64) (domain.RatingSummary, error) {
	values, err := s.ratingRepo.ListActiveValues(ctx, facilityID)
	if err != nil {
		return domain.RatingSummary{}, repoError("Recompute", err)
	}

	summary := Aggregate(values)
	if err := s.facilityRepo.UpdateRatingSummary(ctx, facilityID, summary, s.timeProvider.Now()); err != nil {
		return domain.RatingSummary{}, repoError("Recompute", err)
	}

	return summary, nil
}

// invalidate сбрасывает кэш площадки; ошибка кэша не влияет на результат
func (s *Service) invalidate(ctx context.Context, facilityID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, facilityID); err != nil {
		s.logger.Warn("invalidate facility=%d cache failed: %v", facilityID, err)
	}
}

func repoError(op string, err error) error {
	switch {
	case errors.Is(err, facilityRepo.ErrFacilityNotFound):
		return ErrFacilityNotFound
	case errors.Is(err, ratingRepo.ErrRatingNotFound):
		return ErrRatingNotFound
	}
	return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}

func txError(op string, err error) error {
	if domain.IsCategorized(err) {
		return err
	}
	return fmt.Errorf("%w: %s - transaction error: %w", ErrInternal, op, err)
}

func (s *Service) logFailure(op string, facilityID int64, err error) {
	if errors.Is(err, domain.ErrPersistenceFailure) {
		s.logger.Error("%s: facility=%d failed: %v", op, facilityID, err)
		return
	}
	s.logger.Warn("%s: facility=%d rejected: %v", op, facilityID, err)
}
