package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/nkotelnikov/flightbooking/config"
	"github.com/nkotelnikov/flightbooking/internal/email"
	"github.com/nkotelnikov/flightbooking/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(log)

	if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.WithError(err).Warn("skipping undecodable notification event")
			return nil
		}
		return sender.Send(ctx, event)
	}); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("consumer stopped")
	}
}
