package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type failing struct{}

func (failing) Publish(context.Context, StockEvent) error { return errors.New("broker down") }

func sampleEvent() StockEvent {
	txID := uuid.New()
	return StockEvent{
		Type:          TypeStockUpdate,
		Action:        ActionTransactionCreated,
		TransactionID: &txID,
		Products:      []ProductChange{{ID: uuid.New(), Name: "Widget", OldQuantity: 10, NewQuantity: 7}},
		OccurredAt:    time.Now().UTC(),
	}
}

func TestKafkaPublisherWritesKeyedJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w)
	event := sampleEvent()

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.messages, 1)
	assert.Equal(t, event.Products[0].ID.String(), string(w.messages[0].Key))

	var decoded StockEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, event.Products, decoded.Products)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestMultiKeepsGoingAfterFailure(t *testing.T) {
	rec := &Recorder{}
	m := Multi{failing{}, rec}

	assert.NoError(t, m.Publish(context.Background(), sampleEvent()))
	assert.Len(t, rec.Events, 1)
}

func TestKeyIsProductID(t *testing.T) {
	created := sampleEvent()
	deleted := sampleEvent()
	deleted.Action = ActionTransactionDeleted
	deleted.TransactionID = nil
	deleted.Products = created.Products

	assert.Equal(t, created.Products[0].ID.String(), created.Key())
	assert.Equal(t, created.Key(), deleted.Key())
	assert.Equal(t, "x", StockEvent{Action: "x"}.Key())
}
