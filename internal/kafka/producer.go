package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// TicketEvent is the payload published for every state change of a
// reservation: numbers_reserved, payment_submitted, reservation_expired.
type TicketEvent struct {
	Type           string    `json:"type"`
	Token          string    `json:"token"`
	Numbers        []int     `json:"numbers"`
	BuyerName      string    `json:"buyer_name"`
	BuyerPhone     string    `json:"buyer_phone"`
	BuyerInstagram string    `json:"buyer_instagram,omitempty"`
	Status         string    `json:"status"`
	TotalCents     int64     `json:"total_cents,omitempty"`
	ProofURL       string    `json:"proof_url,omitempty"`
	ExpiresAt      time.Time `json:"expires_at,omitempty"`
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
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
