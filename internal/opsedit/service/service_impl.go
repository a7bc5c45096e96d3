package service

import (
	"context"
	"errors"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	"github.com/enfinitus/onboarding/internal/clock"
	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
	"github.com/enfinitus/onboarding/internal/lock"
	obscontext "github.com/enfinitus/onboarding/internal/observability/context"
	"github.com/enfinitus/onboarding/internal/observability/logger"
	"github.com/enfinitus/onboarding/internal/observability/metrics"
	"github.com/enfinitus/onboarding/internal/opsedit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Locker       lock.Locker
	ContractRepo contractdomain.Repository
	Audit        auditdomain.Service
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	locker       lock.Locker
	contractRepo contractdomain.Repository
	audit        auditdomain.Service
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	m := p.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("opsedit.service"),
		clock:        p.Clock,
		locker:       p.Locker,
		contractRepo: p.ContractRepo,
		audit:        p.Audit,
		metrics:      m,
	}
}

func (s *Service) UpdateMaLoDraft(ctx context.Context, maloDraftID string, fields map[string]any, actor string) (contractdomain.MaLoDraft, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return contractdomain.MaLoDraft{}, domain.ErrInvalidActor
	}
	id, err := parseID(maloDraftID)
	if err != nil {
		return contractdomain.MaLoDraft{}, err
	}
	patch, err := domain.ParsePatch(fields)
	if err != nil {
		s.metrics.RecordManualEdit(ctx, metrics.OutcomeRejected)
		return contractdomain.MaLoDraft{}, err
	}

	release, err := s.locker.Acquire(ctx, lock.MaLoDraftKey(id.String()))
	if err != nil {
		return contractdomain.MaLoDraft{}, err
	}
	defer release()

	ctx = obscontext.WithActor(ctx, actor)
	var (
		updated contractdomain.MaLoDraft
		event   auditdomain.ContractEvent
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		malo, err := s.contractRepo.FindMaLoDraftByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if malo == nil {
			return contractdomain.ErrMaLoDraftNotFound
		}
		draft, err := s.contractRepo.FindDraftByID(ctx, tx, malo.ContractDraftID)
		if err != nil {
			return err
		}
		if draft == nil {
			return contractdomain.ErrDraftNotFound
		}
		if draft.Status == contractdomain.DraftStatusActive {
			return domain.ErrDraftActive
		}

		now := s.clock.Now()
		updates := maps.Clone(patch.Columns)
		if patch.Notes != nil {
			payload := datatypes.JSONMap{}
			maps.Copy(payload, malo.ManualPayload)
			payload[domain.FieldNotes] = *patch.Notes
			payload["edited_by"] = actor
			payload["edited_at"] = now.Format(time.RFC3339)
			updates["manual_payload"] = payload
		}
		updates["updated_at"] = now
		if err := s.contractRepo.UpdateMaLoDraft(ctx, tx, id, updates); err != nil {
			return err
		}

		event, err = s.audit.Append(ctx, tx, auditdomain.AppendRequest{
			ContractID: malo.ContractID,
			EventType:  auditdomain.EventManualEdit,
			Actor:      actor,
			Details: map[string]any{
				"malo_draft_id": id.String(),
				"fields":        fields,
			},
		})
		if err != nil {
			return err
		}

		reloaded, err := s.contractRepo.FindMaLoDraftByID(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = *reloaded
		return nil
	})
	if err != nil {
		s.metrics.RecordManualEdit(ctx, outcomeFor(err))
		return contractdomain.MaLoDraft{}, err
	}

	s.audit.Publish(ctx, event)
	s.metrics.RecordManualEdit(ctx, metrics.OutcomeSuccess)
	logger.WithContext(ctx, s.log).Info("malo draft edited",
		zap.String("malo_draft_id", id.String()),
		zap.Int("fields", len(fields)),
	)
	return updated, nil
}

func outcomeFor(err error) string {
	if errors.Is(err, domain.ErrDraftActive) || errors.Is(err, contractdomain.ErrMaLoDraftNotFound) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailure
}

func parseID(value string) (snowflake.ID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, contractdomain.ErrInvalidMaLoDraftID
	}
	return snowflake.ID(id), nil
}
