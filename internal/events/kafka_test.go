package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"event_type":"DRAFT_CREATED"}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	producer.ExpectSendMessageAndSucceed()

	publisher := NewKafkaPublisher(producer, "contract-events", zaptest.NewLogger(t))
	err := publisher.Publish(context.Background(),
		Message{Key: "CT-1", EventType: "DRAFT_CREATED", Payload: []byte(`{"event_type":"DRAFT_CREATED"}`), OccurredAt: time.Now()},
		Message{Key: "CT-1", EventType: "ACTIVATED", Payload: []byte(`{}`), OccurredAt: time.Now()},
	)
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PropagatesFailure(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisher(producer, "contract-events", zaptest.NewLogger(t))
	err := publisher.Publish(context.Background(), Message{Key: "CT-1", EventType: "ACTIVATED", Payload: []byte(`{}`)})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestNopPublisher(t *testing.T) {
	p := NewNopPublisher()
	assert.NoError(t, p.Publish(context.Background(), Message{Key: "x"}))
	assert.NoError(t, p.Close())
}
