package events

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const headerEventType = "event_type"

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

// NewKafkaPublisher wraps a sync producer. Messages are keyed by contract id
// so one contract's events stay on a single partition.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log.Named("events.kafka"),
	}
}

// NewSaramaConfig returns the producer settings used for contract events.
func NewSaramaConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Version = sarama.V3_3_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Retry.Backoff = 250 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	return cfg
}

func (p *kafkaPublisher) Publish(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make([]*sarama.ProducerMessage, 0, len(msgs))
	for _, msg := range msgs {
		batch = append(batch, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(msg.Key),
			Value: sarama.ByteEncoder(msg.Payload),
			Headers: []sarama.RecordHeader{
				{Key: []byte(headerEventType), Value: []byte(msg.EventType)},
			},
			Timestamp: msg.OccurredAt,
		})
	}

	if err := p.producer.SendMessages(batch); err != nil {
		return fmt.Errorf("publish contract events: %w", err)
	}

	for _, m := range batch {
		p.log.Debug("contract event published",
			zap.String("topic", m.Topic),
			zap.Int32("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
