package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// BookingEvent is the payload published on every booking lifecycle
// transition. The worker uses it to drive customer notifications.
type BookingEvent struct {
	Type             string `json:"type"`
	BookingID        int64  `json:"booking_id"`
	Reference        string `json:"reference"`
	CustomerID       int64  `json:"customer_id"`
	FlightID         int64  `json:"flight_id"`
	Seats            int    `json:"seats"`
	Status           string `json:"status"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	Email            string `json:"email"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
