// Package service holds the storefront's business operations. Every
// operation runs inside a single store transaction.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jogardn/storefront/internal/events"
	"github.com/jogardn/storefront/internal/store"
	"github.com/jogardn/storefront/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	// BcryptCost is the work factor for account passwords. Zero means
	// bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	store      store.Store
	publisher  events.Publisher
	logger     *logrus.Logger
	bcryptCost int
	now        func() time.Time
}

// New creates a Service. publisher may be nil, in which case order events are
// not published.
func New(st store.Store, publisher events.Publisher, logger *logrus.Logger, cfg Config) *Service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		store:      st,
		publisher:  publisher,
		logger:     logger,
		bcryptCost: cost,
		now:        time.Now,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish runs after commit. A failure is logged and otherwise ignored: the
// order change has already happened.
func (s *Service) publish(ctx context.Context, eventType models.OrderEventType, o *models.Order) {
	if s.publisher == nil {
		return
	}

	event := models.OrderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Status:     o.Status,
		TotalPrice: o.TotalPrice,
		EventTime:  s.now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"order_id": o.ID,
			"type":     eventType,
		}).Warn("Failed to publish order event")
	}
}
