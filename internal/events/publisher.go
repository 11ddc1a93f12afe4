package events

import (
	"context"
	"errors"

	"github.com/jogardn/storefront/internal/circuitbreaker"
	"github.com/jogardn/storefront/pkg/models"
	"github.com/sirupsen/logrus"
)

// Publisher announces committed order changes to the outside world.
type Publisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

// LogPublisher only logs events. It stands in when no broker is configured.
type LogPublisher struct {
	Logger *logrus.Logger
}

func (p LogPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	p.Logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"type":     event.Type,
		"order_id": event.OrderID,
		"status":   event.Status,
	}).Debug("Order event (no broker configured)")
	return nil
}

// FanOut delivers each event to every publisher, returning the joined errors.
type FanOut []Publisher

func (f FanOut) Publish(ctx context.Context, event models.OrderEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BreakerPublisher stops calling the wrapped publisher while it keeps failing.
type BreakerPublisher struct {
	next    Publisher
	breaker *circuitbreaker.CircuitBreaker
}

func NewBreakerPublisher(next Publisher, breaker *circuitbreaker.CircuitBreaker) *BreakerPublisher {
	return &BreakerPublisher{next: next, breaker: breaker}
}

func (p *BreakerPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	return p.breaker.Execute(func() error {
		return p.next.Publish(ctx, event)
	})
}

func (p *BreakerPublisher) Metrics() circuitbreaker.Metrics {
	return p.breaker.Metrics()
}
