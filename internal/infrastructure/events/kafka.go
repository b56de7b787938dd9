package events

import (
	"context"
	"encoding/json"
	"fmt"

	kafkaGo "github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events with one shared writer; the topic is set per message.
type KafkaPublisher struct {
	w *kafkaGo.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokers...),
		Balancer:               &kafkaGo.LeastBytes{},
		AllowAutoTopicCreation: true,
	}}
}

func (k *KafkaPublisher) Publish(ctx context.Context, topic string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return k.w.WriteMessages(ctx, kafkaGo.Message{
		Topic: topic,
		Key:   []byte(ev.Key),
		Value: payload,
	})
}

func (k *KafkaPublisher) Close() error {
	return k.w.Close()
}

var _ Publisher = (*KafkaPublisher)(nil)
