package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/jogardn/storefront/internal/circuitbreaker"
	"github.com/jogardn/storefront/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleEvent() models.OrderEvent {
	return models.OrderEvent{
		EventID:    "evt-1",
		Type:       models.OrderEventPlaced,
		OrderID:    42,
		CustomerID: 7,
		Status:     models.OrderStatusPending,
		TotalPrice: decimal.RequireFromString("11.00"),
		EventTime:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestKafkaProducerPublish(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got models.OrderEvent
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.OrderID != 42 || got.Type != models.OrderEventPlaced {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	p := NewKafkaProducerWith(sp, "", testLogger())
	assert.Equal(t, DefaultOrderTopic, p.topic)
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.NoError(t, p.Close())
}

func TestKafkaProducerPublishFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaProducerWith(sp, "orders", testLogger())
	err := p.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

type recordingPublisher struct {
	events []models.OrderEvent
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func TestFanOutDeliversToAll(t *testing.T) {
	a := &recordingPublisher{}
	b := &recordingPublisher{err: errors.New("b down")}
	c := &recordingPublisher{}

	err := FanOut{a, b, c}.Publish(context.Background(), sampleEvent())

	assert.EqualError(t, err, "b down")
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Len(t, c.events, 1)
}

func TestBreakerPublisherFailsFast(t *testing.T) {
	down := &recordingPublisher{err: errors.New("broker down")}
	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:        "order-events",
		MaxFailures: 2,
		OpenTimeout: time.Hour,
	}, testLogger())
	p := NewBreakerPublisher(down, breaker)

	for i := 0; i < 2; i++ {
		assert.Error(t, p.Publish(context.Background(), sampleEvent()))
	}
	err := p.Publish(context.Background(), sampleEvent())

	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Len(t, down.events, 2)
	assert.Equal(t, "open", p.Metrics().State)
}

func TestLogPublisher(t *testing.T) {
	assert.NoError(t, LogPublisher{Logger: testLogger()}.Publish(context.Background(), sampleEvent()))
}

type recordingHandler struct {
	events []models.OrderEvent
}

func (h *recordingHandler) HandleOrderEvent(ctx context.Context, event models.OrderEvent) error {
	h.events = append(h.events, event)
	return nil
}

func TestConsumerHandleMessage(t *testing.T) {
	rec := &recordingHandler{}
	h := &consumerGroupHandler{handler: rec, logger: testLogger()}

	payload, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	require.NoError(t, h.handleMessage(context.Background(), &sarama.ConsumerMessage{Topic: DefaultOrderTopic, Value: payload}))
	require.Len(t, rec.events, 1)
	assert.Equal(t, int64(42), rec.events[0].OrderID)
	assert.True(t, rec.events[0].TotalPrice.Equal(decimal.RequireFromString("11")))

	err = h.handleMessage(context.Background(), &sarama.ConsumerMessage{Topic: DefaultOrderTopic, Value: []byte("not json")})
	assert.Error(t, err)
	assert.Len(t, rec.events, 1)
}
