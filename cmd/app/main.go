package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meridianair/booking/config"
	"github.com/meridianair/booking/internal/bootstrap"
	"github.com/meridianair/booking/internal/cache"
	"github.com/meridianair/booking/internal/kafka"
	"github.com/meridianair/booking/internal/repository"
	"github.com/meridianair/booking/internal/service/booking"
	"github.com/meridianair/booking/internal/service/discount"
	"github.com/meridianair/booking/internal/service/flights"
	"github.com/meridianair/booking/internal/service/payments"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	logger := logrus.New()

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTLSecs)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	passengerRepo := repository.NewPassengerRepository(pool)
	discountRepo := repository.NewDiscountRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	discountSvc := discount.NewService(discountRepo, redisCache, cfg.Booking.ChildAgeLimit, cfg.Booking.ElderlyAgeMin, logger)
	flightSvc := flights.NewFlightService(flightRepo, redisCache, logger)
	bookingSvc := booking.NewBookingService(
		bookingRepo,
		passengerRepo,
		flightRepo,
		discountSvc,
		redisCache,
		producer,
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithSeatLockTTL(time.Duration(cfg.Booking.SeatLockTTLSeconds)*time.Second),
	)
	paymentSvc := payments.NewPaymentService(paymentRepo, bookingSvc, producer, logger,
		payments.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, flightSvc, bookingSvc, paymentSvc); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
