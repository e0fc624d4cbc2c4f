package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func TestOrderConfirmed_PublishesEvent(t *testing.T) {
	writer := &mockWriter{}
	n := &KafkaNotifier{writer: writer}

	n.OrderConfirmed(context.Background(), OrderConfirmation{
		OrderID:       "ord-1",
		CustomerName:  "Asha Rao",
		CustomerPhone: "9876543210",
		Total:         3499,
		Currency:      "INR",
		Items:         []ItemSummary{{Name: "Canvas Tote", Quantity: 2}},
		Address:       "12 MG Road, Bengaluru, Karnataka, 560001, India",
	})

	require.Len(t, writer.messages, 1)
	assert.Equal(t, []byte("ord-1"), writer.messages[0].Key)

	var event OrderConfirmation
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
	assert.Equal(t, int64(3499), event.Total)
	assert.Equal(t, "order.confirmed", string(writer.messages[0].Headers[0].Value))
}

func TestOrderConfirmed_SwallowsWriteFailure(t *testing.T) {
	writer := &mockWriter{err: errors.New("broker unreachable")}
	n := &KafkaNotifier{writer: writer}

	// must not panic or propagate anything
	n.OrderConfirmed(context.Background(), OrderConfirmation{OrderID: "ord-2"})

	assert.Empty(t, writer.messages)
}
