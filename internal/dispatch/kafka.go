package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes summaries to the operator topic.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaNotifier{writer: w}
}

func (n *KafkaNotifier) Notify(ctx context.Context, summary string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	value, err := json.Marshal(map[string]string{"text": summary})
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafka.Message{Value: value})
}

func (n *KafkaNotifier) Close() error {
	if n.writer == nil {
		return nil
	}
	return n.writer.Close()
}
