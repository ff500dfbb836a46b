package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Keoroanthony/go-food-delivery/internal/models"
	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

const sendTimeout = 10 * time.Second

// Message is one customer-facing notification about an order.
type Message struct {
	OrderID      string
	CustomerName string
	Phone        string
	Email        string
	Subject      string
	Text         string
	Total        string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher turns committed order changes into customer notifications and
// order events. Delivery is best-effort and happens off the request path.
type Dispatcher struct {
	senders []Sender
	events  *EventPublisher
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, events *EventPublisher, senders ...Sender) *Dispatcher {
	return &Dispatcher{senders: senders, events: events, log: log}
}

func (d *Dispatcher) OrderPlaced(_ context.Context, order *models.Order) {
	total := order.TotalAmount.StringFixed(2)
	msg := Message{
		OrderID:      order.ID.String(),
		CustomerName: order.Customer.Name,
		Phone:        order.Customer.Phone,
		Email:        order.Customer.Email,
		Subject:      fmt.Sprintf("Order #%s Confirmation - Thank You for Your Order!", shortID(order)),
		Text:         fmt.Sprintf("Your order #%s has been successfully placed at %s! Total: %s. Thank you for ordering with us!", shortID(order), order.Restaurant.Name, total),
		Total:        total,
	}
	d.dispatch(msg, newEvent(EventOrderPlaced, order, ""))
}

func (d *Dispatcher) StatusChanged(_ context.Context, order *models.Order, from models.OrderStatus) {
	msg := Message{
		OrderID:      order.ID.String(),
		CustomerName: order.Customer.Name,
		Phone:        order.Customer.Phone,
		Email:        order.Customer.Email,
		Subject:      fmt.Sprintf("Order #%s Update", shortID(order)),
		Text:         fmt.Sprintf("Order #%s: %s.", shortID(order), orders.StatusMessage(from, order.Status)),
		Total:        order.TotalAmount.StringFixed(2),
	}
	d.dispatch(msg, newEvent(EventStatusChanged, order, from))
}

// Wait blocks until every in-flight notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(msg Message, ev Event) {
	for _, s := range d.senders {
		d.wg.Add(1)
		go func(s Sender) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := s.Send(ctx, msg); err != nil {
				d.log.Warn("notification failed", zap.String("order_id", msg.OrderID), zap.String("sender", fmt.Sprintf("%T", s)), zap.Error(err))
			}
		}(s)
	}
	if d.events == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := d.events.Publish(ctx, ev); err != nil {
			d.log.Warn("order event publish failed", zap.String("order_id", ev.OrderID), zap.String("type", ev.Type), zap.Error(err))
		}
	}()
}

func shortID(order *models.Order) string {
	return order.ID.String()[:8]
}

// Close releases the event publisher, if any.
func (d *Dispatcher) Close() error {
	if d.events == nil {
		return nil
	}
	return d.events.Close()
}
