package complaints

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "complaints.filed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRecorder publishes filings as JSON, keyed by filing ID.
type KafkaRecorder struct {
	w messageWriter
}

// NewKafkaRecorder returns a recorder publishing to topic. With async set,
// Record only enqueues and delivery errors are logged from the writer's
// completion callback. Processes that may be frozen between requests, such as
// Lambda, must use the synchronous mode.
func NewKafkaRecorder(broker, topic string, async bool) *KafkaRecorder {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        async,
	}
	if async {
		w.Completion = logDeliveryErrors
	}
	return &KafkaRecorder{w: w}
}

func logDeliveryErrors(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		log.Printf("complaints: failed to deliver filing %s: %v", m.Key, err)
	}
}

func (r *KafkaRecorder) Record(ctx context.Context, f Filing) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode filing: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(f.ID),
		Value: data,
		Time:  time.Now(),
	}
	if err := r.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish filing: %w", err)
	}
	return nil
}

func (r *KafkaRecorder) Close() error {
	return r.w.Close()
}
