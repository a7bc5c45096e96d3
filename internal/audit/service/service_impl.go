package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	"github.com/enfinitus/onboarding/internal/audit/masking"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/events"
	obscontext "github.com/enfinitus/onboarding/internal/observability/context"
	"github.com/enfinitus/onboarding/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      auditdomain.Repository
	Publisher events.Publisher `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      auditdomain.Repository
	publisher events.Publisher
	metrics   *metrics.Metrics
}

func NewService(p Params) auditdomain.Service {
	publisher := p.Publisher
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	m := p.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("audit.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		publisher: publisher,
		metrics:   m,
	}
}

func (s *Service) Append(ctx context.Context, db *gorm.DB, req auditdomain.AppendRequest) (auditdomain.ContractEvent, error) {
	contractID := strings.TrimSpace(req.ContractID)
	if contractID == "" {
		return auditdomain.ContractEvent{}, auditdomain.ErrInvalidContractID
	}
	if !req.EventType.Valid() {
		return auditdomain.ContractEvent{}, auditdomain.ErrInvalidEventType
	}
	if db == nil {
		db = s.db
	}

	payload := map[string]any{}
	for key, value := range masking.MaskDetails(req.Details) {
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := auditdomain.ContractEvent{
		ID:         s.genID.Generate(),
		ContractID: contractID,
		EventType:  req.EventType,
		Actor:      resolveActor(ctx, req.Actor),
		CreatedAt:  s.clock.Now(),
	}
	if len(payload) > 0 {
		entry.Details = datatypes.JSONMap(payload)
	}

	if err := s.repo.Insert(ctx, db, &entry); err != nil {
		s.log.Warn("failed to write contract event",
			zap.String("contract_id", contractID),
			zap.String("event_type", string(req.EventType)),
			zap.Error(err),
		)
		return auditdomain.ContractEvent{}, err
	}
	return entry, nil
}

func (s *Service) Publish(ctx context.Context, evts ...auditdomain.ContractEvent) {
	if len(evts) == 0 {
		return
	}

	msgs := make([]events.Message, 0, len(evts))
	for _, evt := range evts {
		payload, err := json.Marshal(evt)
		if err != nil {
			s.log.Warn("failed to encode contract event", zap.String("event_id", evt.ID.String()), zap.Error(err))
			continue
		}
		msgs = append(msgs, events.Message{
			Key:        evt.ContractID,
			EventType:  string(evt.EventType),
			Payload:    payload,
			OccurredAt: evt.CreatedAt,
		})
	}

	if err := s.publisher.Publish(ctx, msgs...); err != nil {
		s.log.Warn("failed to publish contract events", zap.Int("count", len(msgs)), zap.Error(err))
		for _, msg := range msgs {
			s.metrics.RecordEventPublish(ctx, msg.EventType, metrics.OutcomeFailure)
		}
		return
	}
	for _, msg := range msgs {
		s.metrics.RecordEventPublish(ctx, msg.EventType, metrics.OutcomeSuccess)
	}
}

func (s *Service) Record(ctx context.Context, req auditdomain.AppendRequest) (auditdomain.ContractEvent, error) {
	entry, err := s.Append(ctx, s.db, req)
	if err != nil {
		return auditdomain.ContractEvent{}, err
	}
	s.Publish(ctx, entry)
	return entry, nil
}

func (s *Service) List(ctx context.Context, contractID string) ([]auditdomain.ContractEvent, error) {
	contractID = strings.TrimSpace(contractID)
	if contractID == "" {
		return nil, auditdomain.ErrInvalidContractID
	}
	return s.repo.ListByContractID(ctx, s.db, contractID)
}

func resolveActor(ctx context.Context, actor string) *string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = obscontext.ActorFromContext(ctx)
	}
	if actor == "" {
		return nil
	}
	return &actor
}
