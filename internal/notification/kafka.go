package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the slice of kafka.Writer this package uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(brokers ...string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-notifications",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w}
}

func (n *KafkaNotifier) OrderConfirmed(ctx context.Context, event OrderConfirmation) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal order confirmation for order %v: %v", event.OrderID, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order_id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.confirmed")},
		},
	}

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		// checkout never waits on this
		log.Printf("failed to publish order confirmation for order %v: %v", event.OrderID, err)
	}
}

func (n *KafkaNotifier) Close() error {
	if w, ok := n.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
