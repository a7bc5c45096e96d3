package events

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/enfinitus/onboarding/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewPublisher),
)

// NewPublisher connects to KAFKA_BROKERS, or returns a no-op publisher when
// none are configured.
func NewPublisher(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("kafka brokers not configured, contract events are not published")
		return NewNopPublisher(), nil
	}

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, NewSaramaConfig(cfg.AppName))
	if err != nil {
		return nil, err
	}

	publisher := NewKafkaPublisher(producer, cfg.KafkaTopic, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}
