package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nkotelnikov/flightbooking/config"
	"github.com/nkotelnikov/flightbooking/internal/bootstrap"
	"github.com/nkotelnikov/flightbooking/internal/cache"
	"github.com/nkotelnikov/flightbooking/internal/kafka"
	"github.com/nkotelnikov/flightbooking/internal/repository"
	"github.com/nkotelnikov/flightbooking/internal/service/booking"
	"github.com/nkotelnikov/flightbooking/internal/service/flights"
	"github.com/nkotelnikov/flightbooking/internal/service/inventory"
	"github.com/nkotelnikov/flightbooking/internal/service/payments"
	"github.com/nkotelnikov/flightbooking/internal/service/tickets"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Cache.FlightsTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	inventorySvc := inventory.NewInventoryService(flightRepo, log)
	ticketSvc := tickets.NewTicketService(ticketRepo)
	paymentSvc := payments.NewPaymentService(paymentRepo)
	flightSvc := flights.NewFlightService(flightRepo, redisCache)
	bookingSvc := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		inventorySvc,
		ticketSvc,
		paymentSvc,
		log,
		booking.WithProducer(producer, cfg.Kafka.BookingTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithCache(redisCache),
	)

	if err := bootstrap.Run(ctx, cfg, flightSvc, bookingSvc); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
