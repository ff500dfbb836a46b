package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Keoroanthony/go-food-delivery/configs"
	"github.com/Keoroanthony/go-food-delivery/internal/models"
)

const (
	EventOrderPlaced   = "order.placed"
	EventStatusChanged = "order.status_changed"
)

// Event is the payload published for every committed order change.
type Event struct {
	Type         string             `json:"type"`
	OrderID      string             `json:"order_id"`
	CustomerID   string             `json:"customer_id"`
	RestaurantID string             `json:"restaurant_id"`
	From         models.OrderStatus `json:"from,omitempty"`
	Status       models.OrderStatus `json:"status"`
	TotalAmount  string             `json:"total_amount"`
	Version      int64              `json:"version"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

func newEvent(typ string, order *models.Order, from models.OrderStatus) Event {
	return Event{
		Type:         typ,
		OrderID:      order.ID.String(),
		CustomerID:   order.CustomerID.String(),
		RestaurantID: order.RestaurantID.String(),
		From:         from,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount.StringFixed(2),
		Version:      order.Version,
		OccurredAt:   time.Now().UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher writes order events to Kafka keyed by order id, so every
// event of one order lands on the same partition in commit order.
type EventPublisher struct {
	writer messageWriter
}

func NewEventPublisher(cfg config.KafkaConfig) *EventPublisher {
	return &EventPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *EventPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.OrderID), Value: data, Time: ev.OccurredAt})
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
