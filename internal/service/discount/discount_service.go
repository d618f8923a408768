package discount

import (
	"context"
	"time"

	"github.com/meridianair/booking/internal/domain"
	"github.com/meridianair/booking/internal/repository"
	"github.com/sirupsen/logrus"
)

// Cache holds discount rows, which change rarely enough that a lookup per
// passenger creation is wasted work.
type Cache interface {
	GetDiscount(ctx context.Context, discountType string) (*domain.Discount, error)
	SetDiscount(ctx context.Context, d *domain.Discount) error
}

type Service struct {
	repo          repository.DiscountRepository
	cache         Cache
	childAgeLimit int
	elderlyAgeMin int
	logger        *logrus.Logger
}

func NewService(repo repository.DiscountRepository, cache Cache, childAgeLimit, elderlyAgeMin int, logger *logrus.Logger) *Service {
	return &Service{
		repo:          repo,
		cache:         cache,
		childAgeLimit: childAgeLimit,
		elderlyAgeMin: elderlyAgeMin,
		logger:        logger,
	}
}

// ResolveType maps a date of birth to a discount category. Pure function of
// the passenger's age at the given moment.
func (s *Service) ResolveType(dateOfBirth, now time.Time) string {
	age := yearsBetween(dateOfBirth, now)
	switch {
	case age <= s.childAgeLimit:
		return domain.DiscountChild
	case age >= s.elderlyAgeMin:
		return domain.DiscountElderly
	default:
		return domain.DiscountNone
	}
}

// Resolve returns the discount row for the passenger's age. A missing row
// for a resolved type is a configuration defect and surfaces as NotFound.
func (s *Service) Resolve(ctx context.Context, dateOfBirth, now time.Time) (*domain.Discount, error) {
	return s.Lookup(ctx, s.ResolveType(dateOfBirth, now))
}

func (s *Service) Lookup(ctx context.Context, discountType string) (*domain.Discount, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetDiscount(ctx, discountType); err == nil && cached != nil {
			return cached, nil
		}
	}

	d, err := s.repo.GetByType(ctx, discountType)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetDiscount(ctx, d); err != nil {
			s.logger.WithError(err).WithField("discount_type", discountType).Warn("failed to cache discount")
		}
	}
	return d, nil
}

func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	// Birthday not reached yet this year.
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	return years
}
