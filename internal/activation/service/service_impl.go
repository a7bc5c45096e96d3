package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/activation/domain"
	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	"github.com/enfinitus/onboarding/internal/clock"
	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
	"github.com/enfinitus/onboarding/internal/lock"
	obscontext "github.com/enfinitus/onboarding/internal/observability/context"
	"github.com/enfinitus/onboarding/internal/observability/logger"
	"github.com/enfinitus/onboarding/internal/observability/metrics"
	"github.com/enfinitus/onboarding/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Locker       lock.Locker
	ContractRepo contractdomain.Repository
	Audit        auditdomain.Service
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
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
		log:          p.Log.Named("activation.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		locker:       p.Locker,
		contractRepo: p.ContractRepo,
		audit:        p.Audit,
		metrics:      m,
	}
}

func (s *Service) ConfirmSwitch(ctx context.Context, maloDraftID string, actor string) (contractdomain.Contract, error) {
	ctx, span := tracing.StartSpan(ctx, "activation.confirm_switch")
	defer span.End()

	actor = strings.TrimSpace(actor)
	if actor == "" {
		return contractdomain.Contract{}, domain.ErrInvalidActor
	}
	id, err := strconv.ParseInt(strings.TrimSpace(maloDraftID), 10, 64)
	if err != nil || id <= 0 {
		return contractdomain.Contract{}, contractdomain.ErrInvalidMaLoDraftID
	}

	release, err := s.locker.Acquire(ctx, lock.MaLoDraftKey(snowflake.ID(id).String()))
	if err != nil {
		return contractdomain.Contract{}, err
	}
	defer release()

	ctx = obscontext.WithActor(ctx, actor)
	var (
		contract contractdomain.Contract
		event    auditdomain.ContractEvent
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		malo, err := s.contractRepo.FindMaLoDraftByID(ctx, tx, snowflake.ID(id))
		if err != nil {
			return err
		}
		if malo == nil {
			return contractdomain.ErrMaLoDraftNotFound
		}
		if malo.DraftStatus != contractdomain.VerificationApproved {
			return domain.ErrDraftNotApproved
		}

		draft, err := s.contractRepo.FindDraftByID(ctx, tx, malo.ContractDraftID)
		if err != nil {
			return err
		}
		if draft == nil {
			return contractdomain.ErrDraftNotFound
		}
		if draft.Status == contractdomain.DraftStatusActive {
			return domain.ErrAlreadyActive
		}

		now := s.clock.Now()
		rows, err := s.contractRepo.ActivateDraft(ctx, tx, draft.ID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrAlreadyActive
		}

		contract = contractdomain.Contract{
			ID:              s.genID.Generate(),
			ContractID:      draft.ContractID,
			ContractDraftID: draft.ID,
			CustomerID:      draft.CustomerID,
			CampaignID:      draft.CampaignID,
			SnapshotID:      draft.SnapshotID,
			VoucherID:       draft.VoucherID,
			WorkingPrice:    draft.WorkingPrice,
			BasePrice:       draft.BasePrice,
			Status:          contractdomain.ContractStatusActive,
			ActivatedBy:     actor,
			ActivatedAt:     now,
		}
		if err := s.contractRepo.InsertContract(ctx, tx, &contract); err != nil {
			return err
		}

		location := contractdomain.FinalMarketLocation{
			ID:                  s.genID.Generate(),
			ContractID:          draft.ContractID,
			CustomerID:          draft.CustomerID,
			MaLoID:              malo.MaLoID,
			HasOwnMsb:           malo.HasOwnMsb,
			MeterNumber:         malo.MeterNumber,
			PreviousProviderID:  malo.PreviousProviderID,
			PreviousConsumption: malo.PreviousConsumption,
			ChangeProcessStatus: contractdomain.ChangeProcessInProgress,
			CreatedAt:           now,
		}
		if err := s.contractRepo.InsertFinalMarketLocation(ctx, tx, &location); err != nil {
			return err
		}

		event, err = s.audit.Append(ctx, tx, auditdomain.AppendRequest{
			ContractID: draft.ContractID,
			EventType:  auditdomain.EventActivated,
			Actor:      actor,
			Details: map[string]any{
				"contract_draft_id":    draft.ID.String(),
				"malo_draft_id":        malo.ID.String(),
				"contract_record_id":   contract.ID.String(),
				"customer_malo_id":     location.ID.String(),
				"change_process_state": location.ChangeProcessStatus,
			},
		})
		return err
	})
	if err != nil {
		outcome := metrics.OutcomeFailure
		if errors.Is(err, domain.ErrDraftNotApproved) || errors.Is(err, domain.ErrAlreadyActive) {
			outcome = metrics.OutcomeRejected
		}
		s.metrics.RecordActivation(ctx, outcome)
		return contractdomain.Contract{}, err
	}

	s.audit.Publish(ctx, event)
	s.metrics.RecordActivation(ctx, metrics.OutcomeSuccess)
	logger.WithContext(ctx, s.log).Info("contract activated",
		zap.String("contract_id", contract.ContractID),
		zap.String("malo_draft_id", snowflake.ID(id).String()),
	)
	return contract, nil
}
