package flights

import (
	"context"
	"time"

	"github.com/meridianair/booking/internal/domain"
	"github.com/meridianair/booking/internal/repository"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Identify(ctx context.Context, originCode, destCode, airplaneModel string, departure, arrival time.Time) (*domain.Flight, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

type FlightService struct {
	repo   repository.FlightRepository
	cache  Cache
	logger *logrus.Logger
}

func NewFlightService(repo repository.FlightRepository, cache Cache, logger *logrus.Logger) *FlightService {
	return &FlightService{repo: repo, cache: cache, logger: logger}
}

// List is cache-aside: the listing is read-heavy and tolerates counters a
// few seconds stale. Clients claiming a seat still go through the
// authoritative conditional update.
func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.logger.WithError(err).Warn("failed to cache flights")
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Identify(ctx context.Context, originCode, destCode, airplaneModel string, departure, arrival time.Time) (*domain.Flight, error) {
	return s.repo.IdentifyFlight(ctx, originCode, destCode, airplaneModel, departure, arrival)
}

var _ FlightUseCase = (*FlightService)(nil)
