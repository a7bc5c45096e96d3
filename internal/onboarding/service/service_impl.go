package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	campaigndomain "github.com/enfinitus/onboarding/internal/campaign/domain"
	"github.com/enfinitus/onboarding/internal/clock"
	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
	customerdomain "github.com/enfinitus/onboarding/internal/customer/domain"
	"github.com/enfinitus/onboarding/internal/funnel"
	obscontext "github.com/enfinitus/onboarding/internal/observability/context"
	"github.com/enfinitus/onboarding/internal/observability/logger"
	"github.com/enfinitus/onboarding/internal/observability/metrics"
	"github.com/enfinitus/onboarding/internal/observability/tracing"
	"github.com/enfinitus/onboarding/internal/onboarding/domain"
	pricingdomain "github.com/enfinitus/onboarding/internal/pricing/domain"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	verificationdomain "github.com/enfinitus/onboarding/internal/verification/domain"
	voucherdomain "github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recoveryBatchSize = 100

type Params struct {
	fx.In

	DB           *gorm.DB
	Fallback     *db.Fallback `optional:"true"`
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	Customers    customerdomain.Service
	Campaigns    campaigndomain.Service
	Vouchers     voucherdomain.Service
	Resolver     pricingdomain.Resolver
	Snapshots    pricingdomain.SnapshotStore
	ContractRepo contractdomain.Repository
	Audit        auditdomain.Service
	Verification verificationdomain.Service
	Notifier     verificationdomain.Notifier `optional:"true"`
	Metrics      *metrics.Metrics            `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	fallback     *db.Fallback
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	customers    customerdomain.Service
	campaigns    campaigndomain.Service
	vouchers     voucherdomain.Service
	resolver     pricingdomain.Resolver
	snapshots    pricingdomain.SnapshotStore
	contractRepo contractdomain.Repository
	audit        auditdomain.Service
	verification verificationdomain.Service
	notifier     verificationdomain.Notifier
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	m := p.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		db:           p.DB,
		fallback:     p.Fallback,
		log:          p.Log.Named("onboarding.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customers:    p.Customers,
		campaigns:    p.Campaigns,
		vouchers:     p.Vouchers,
		resolver:     p.Resolver,
		snapshots:    p.Snapshots,
		contractRepo: p.ContractRepo,
		audit:        p.Audit,
		verification: p.Verification,
		notifier:     p.Notifier,
		metrics:      m,
	}
}

// run carries the state of one import attempt against one store.
type run struct {
	db         *gorm.DB
	degraded   bool
	contractID string
	funnelID   string
	startDate  *time.Time
}

func (s *Service) Import(ctx context.Context, req domain.ImportRequest) (domain.ImportResult, error) {
	ctx, span := tracing.StartSpan(ctx, "onboarding.import")
	defer span.End()

	r, err := s.prepare(req)
	if err != nil {
		s.metrics.RecordImport(ctx, "", metrics.OutcomeRejected)
		return domain.ImportResult{}, err
	}
	r.db = s.db
	r.contractID = newContractID("")
	ctx = obscontext.WithContractID(ctx, r.contractID)
	span.SetAttributes(attribute.String("onboarding.contract_id", r.contractID))

	result, tariffType, err := s.importOn(ctx, r, req)
	if err != nil && db.IsConnectivityErr(err) && s.fallback.Enabled() {
		logger.WithContext(ctx, s.log).Warn("primary store unreachable, importing into fallback store", zap.Error(err))

		r.db = s.fallback.DB
		r.degraded = true
		r.contractID = newContractID(domain.DegradedIDPrefix)
		ctx = obscontext.WithContractID(ctx, r.contractID)
		result, tariffType, err = s.importOn(ctx, r, req)
	}
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "import failed")
		s.metrics.RecordImport(ctx, string(tariffType), metrics.OutcomeFailure)
		return domain.ImportResult{}, err
	}

	outcome := metrics.OutcomeSuccess
	if result.Degraded {
		outcome = metrics.OutcomeDegraded
	}
	s.metrics.RecordImport(ctx, string(tariffType), outcome)
	return result, nil
}

func (s *Service) prepare(req domain.ImportRequest) (run, error) {
	r := run{funnelID: funnel.Normalize(req.FunnelID)}
	if r.funnelID == "" {
		return r, domain.ErrInvalidFunnel
	}
	if strings.TrimSpace(req.Contract.TariffID) == "" {
		return r, domain.ErrInvalidTariffID
	}
	if req.Contract.EstimatedConsumption < 0 || req.MeterLocation.PreviousConsumption < 0 {
		return r, domain.ErrInvalidConsumption
	}
	if value := strings.TrimSpace(req.Contract.DesiredStartDate); value != "" {
		start, err := time.Parse(time.DateOnly, value)
		if err != nil {
			return r, domain.ErrInvalidDesiredStartDate
		}
		r.startDate = &start
	}
	return r, nil
}

func (s *Service) importOn(ctx context.Context, r run, req domain.ImportRequest) (domain.ImportResult, tariffdomain.TariffType, error) {
	log := logger.WithContext(ctx, s.log).With(zap.String("funnel_id", r.funnelID), zap.Bool("degraded", r.degraded))

	customer, created, err := s.customers.WithDB(r.db).EnsureByEmail(ctx, customerdomain.EnsureCustomerRequest{
		Email:       req.Customer.Email,
		FirstName:   req.Customer.FirstName,
		LastName:    req.Customer.LastName,
		Phone:       req.Customer.Phone,
		Street:      req.Customer.Street,
		HouseNumber: req.Customer.HouseNumber,
		ZipCode:     req.Customer.ZipCode,
		City:        req.Customer.City,
	})
	if err != nil {
		return domain.ImportResult{}, "", fmt.Errorf("resolve customer: %w", err)
	}
	if created {
		log.Info("customer created", zap.String("customer_id", customer.ID.String()))
	}

	resolution, err := s.campaigns.WithDB(r.db).Resolve(ctx, campaigndomain.ResolveRequest{
		TariffID:    req.Contract.TariffID,
		CampaignKey: req.Contract.CampaignKey,
	})
	if err != nil {
		return domain.ImportResult{}, "", err
	}
	tariffType := resolution.TariffType
	log = log.With(zap.String("tariff_type", string(tariffType)), zap.String("campaign_key", resolution.Campaign.Key))

	draft := &contractdomain.ContractDraft{
		ID:                   s.genID.Generate(),
		ContractID:           r.contractID,
		FunnelID:             r.funnelID,
		CustomerID:           customer.ID,
		CampaignID:           resolution.Campaign.ID,
		TariffType:           tariffType,
		PriceSource:          contractdomain.PriceSourceCampaign,
		EstimatedConsumption: req.Contract.EstimatedConsumption,
		DesiredStartDate:     r.startDate,
		IBAN:                 strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(req.Contract.IBAN)), " ", ""),
		SepaMandate:          req.Contract.SepaMandate,
		VerificationStatus:   contractdomain.VerificationPending,
		Status:               contractdomain.DraftStatusDraft,
	}
	price := tariffdomain.Price{
		WorkingPrice: resolution.Campaign.WorkingPrice,
		BasePrice:    resolution.Campaign.BasePrice,
	}

	if !r.degraded {
		if quoted, snapshotID, ok := s.capturePrice(ctx, log, r, tariffType, zipCodeFor(req)); ok {
			price = quoted
			draft.PriceSource = contractdomain.PriceSourceSnapshot
			draft.SnapshotID = snapshotID
		}
	}

	if voucher, ok := s.resolveVoucher(ctx, log, r, req.Contract.VoucherCode); ok {
		discount := voucherdomain.Discount(price, voucher)
		price = voucherdomain.Apply(price, voucher)
		draft.VoucherID = &voucher.ID
		draft.WorkingPriceDiscount = discount.WorkingPrice
		draft.BasePriceDiscount = discount.BasePrice
	}
	draft.WorkingPrice = price.WorkingPrice
	draft.BasePrice = price.BasePrice

	now := s.clock.Now()
	if err := s.repo.Insert(ctx, r.db, &domain.Saga{
		ContractID: r.contractID,
		Step:       domain.SagaStarted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return domain.ImportResult{}, tariffType, fmt.Errorf("start saga: %w", err)
	}

	draft.CreatedAt = now
	draft.UpdatedAt = now
	if err := s.contractRepo.InsertDraft(ctx, r.db, draft); err != nil {
		s.markSaga(ctx, r.db, r.contractID, domain.SagaCompensated, nil, err)
		return domain.ImportResult{}, tariffType, fmt.Errorf("insert contract draft: %w", err)
	}
	s.markSaga(ctx, r.db, r.contractID, domain.SagaDraftCreated, &draft.ID, nil)

	malo := &contractdomain.MaLoDraft{
		ID:                  s.genID.Generate(),
		ContractDraftID:     draft.ID,
		ContractID:          r.contractID,
		MaLoID:              strings.TrimSpace(req.MeterLocation.MaLoID),
		HasOwnMsb:           req.MeterLocation.HasOwnMsb,
		MeterNumber:         strings.TrimSpace(req.MeterLocation.MeterNumber),
		PreviousProviderID:  strings.TrimSpace(req.MeterLocation.PreviousProviderID),
		PreviousConsumption: req.MeterLocation.PreviousConsumption,
		DraftStatus:         contractdomain.VerificationPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.contractRepo.InsertMaLoDraft(ctx, r.db, malo); err != nil {
		return domain.ImportResult{}, tariffType, s.compensate(ctx, log, r, draft.ID, err)
	}

	result := domain.ImportResult{
		ContractID:  r.contractID,
		DraftID:     draft.ID.String(),
		MaLoDraftID: malo.ID.String(),
		Degraded:    r.degraded,
	}

	details := draftCreatedDetails(draft, malo)
	details["campaign_key"] = resolution.Campaign.Key

	// The verification worker only polls the primary store.
	job, err := s.complete(ctx, r.db, draft, details, true, !r.degraded)
	if err != nil {
		log.Warn("import left for saga recovery", zap.String("draft_id", draft.ID.String()), zap.Error(err))
	} else if job != nil {
		result.VerificationJobID = job.ID.String()
	}

	if r.degraded {
		result.DraftID = domain.DegradedIDPrefix + result.DraftID
		result.MaLoDraftID = domain.DegradedIDPrefix + result.MaLoDraftID
		log.Warn("import completed on fallback store", zap.String("draft_id", result.DraftID))
		return result, tariffType, nil
	}

	log.Info("contract draft imported",
		zap.String("draft_id", result.DraftID),
		zap.String("price_source", string(draft.PriceSource)),
	)
	return result, tariffType, nil
}

// complete writes the DRAFT_CREATED event, the verification job and the
// COMPLETED step in one transaction. On failure the saga stays in
// DRAFT_CREATED and RecoverStale retries it.
func (s *Service) complete(ctx context.Context, conn *gorm.DB, draft *contractdomain.ContractDraft, details map[string]any, appendEvent, enqueue bool) (*verificationdomain.Job, error) {
	var (
		event auditdomain.ContractEvent
		job   *verificationdomain.Job
	)
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if appendEvent {
			var err error
			event, err = s.audit.Append(ctx, tx, auditdomain.AppendRequest{
				ContractID: draft.ContractID,
				EventType:  auditdomain.EventDraftCreated,
				Details:    details,
			})
			if err != nil {
				return fmt.Errorf("append draft created event: %w", err)
			}
		}
		if enqueue {
			queued, err := s.verification.Enqueue(ctx, tx, draft.ContractID, draft.ID)
			if err != nil {
				return fmt.Errorf("enqueue verification: %w", err)
			}
			job = &queued
		}
		return s.repo.Update(ctx, tx, draft.ContractID, domain.SagaUpdate{
			Step:            domain.SagaCompleted,
			ContractDraftID: &draft.ID,
			At:              s.clock.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	// Fallback-store contracts carry MOCK- ids and stay off the event stream.
	if appendEvent && !strings.HasPrefix(draft.ContractID, domain.DegradedIDPrefix) {
		s.audit.Publish(ctx, event)
	}
	if job != nil && s.notifier != nil {
		s.notifier.Notify()
	}
	return job, nil
}

func draftCreatedDetails(draft *contractdomain.ContractDraft, malo *contractdomain.MaLoDraft) map[string]any {
	return map[string]any{
		"contract_draft_id": draft.ID.String(),
		"malo_draft_id":     malo.ID.String(),
		"funnel_id":         draft.FunnelID,
		"tariff_type":       string(draft.TariffType),
		"price_source":      string(draft.PriceSource),
		"working_price":     draft.WorkingPrice.String(),
		"base_price":        draft.BasePrice.String(),
	}
}

// capturePrice resolves the live price and freezes it. The snapshot id is nil
// when the quote resolved but could not be stored.
func (s *Service) capturePrice(ctx context.Context, log *zap.Logger, r run, tariffType tariffdomain.TariffType, zipCode string) (tariffdomain.Price, *snowflake.ID, bool) {
	quote, err := s.resolver.WithDB(r.db).Resolve(ctx, r.funnelID, tariffType, zipCode)
	if err != nil {
		log.Warn("price not resolved, using campaign price", zap.String("zip_code", zipCode), zap.Error(err))
		s.metrics.RecordPriceFallback(ctx, metrics.FallbackFeedUnavailable)
		return tariffdomain.Price{}, nil, false
	}

	snapshot, err := s.snapshots.Capture(ctx, r.db, quote)
	if err != nil {
		log.Warn("price snapshot not stored", zap.Error(err))
		s.metrics.RecordPriceFallback(ctx, metrics.FallbackSnapshotFailed)
		return quote.Final, nil, true
	}
	return snapshot.FinalPrice(), &snapshot.ID, true
}

func (s *Service) resolveVoucher(ctx context.Context, log *zap.Logger, r run, code string) (voucherdomain.Voucher, bool) {
	if strings.TrimSpace(code) == "" {
		return voucherdomain.Voucher{}, false
	}
	voucher, err := s.vouchers.WithDB(r.db).Resolve(ctx, code, r.funnelID, s.clock.Now())
	if err != nil {
		log.Warn("voucher ignored", zap.String("voucher_code", strings.ToUpper(strings.TrimSpace(code))), zap.Error(err))
		if errors.Is(err, voucherdomain.ErrNotApplicable) {
			s.metrics.RecordPriceFallback(ctx, metrics.FallbackNoVoucher)
		}
		return voucherdomain.Voucher{}, false
	}
	return voucher, true
}

// compensate removes the draft left behind by a failed market location insert.
// When the delete fails too the saga stays in DRAFT_CREATED for RecoverStale.
func (s *Service) compensate(ctx context.Context, log *zap.Logger, r run, draftID snowflake.ID, cause error) error {
	log.Error("market location draft insert failed, compensating", zap.Error(cause))

	if err := s.contractRepo.DeleteDraft(ctx, r.db, draftID); err != nil {
		log.Error("compensation failed, draft left for recovery", zap.String("draft_id", draftID.String()), zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrIntegrity, errors.Join(cause, err))
	}
	s.markSaga(ctx, r.db, r.contractID, domain.SagaCompensated, nil, cause)
	return fmt.Errorf("%w: %w", domain.ErrIntegrity, cause)
}

func (s *Service) markSaga(ctx context.Context, conn *gorm.DB, contractID string, step domain.SagaStep, draftID *snowflake.ID, cause error) {
	update := domain.SagaUpdate{
		Step:            step,
		ContractDraftID: draftID,
		At:              s.clock.Now(),
	}
	if cause != nil {
		msg := cause.Error()
		update.LastError = &msg
	}
	if err := s.repo.Update(context.WithoutCancel(ctx), conn, contractID, update); err != nil {
		logger.WithContext(ctx, s.log).Warn("saga step not recorded",
			zap.String("step", string(step)),
			zap.Error(err),
		)
	}
}

func (s *Service) RecoverStale(ctx context.Context, olderThan time.Duration) (int, error) {
	sagas, err := s.repo.ListPending(ctx, s.db, s.clock.Now().Add(-olderThan), recoveryBatchSize)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, saga := range sagas {
		if err := ctx.Err(); err != nil {
			return recovered, err
		}
		if err := s.recover(ctx, saga); err != nil {
			s.log.Warn("saga recovery failed", zap.String("contract_id", saga.ContractID), zap.Error(err))
			continue
		}
		recovered++
	}
	return recovered, nil
}

// recover completes a saga whose market location draft exists and compensates
// every other interrupted saga.
func (s *Service) recover(ctx context.Context, saga domain.Saga) error {
	draft, err := s.findSagaDraft(ctx, saga)
	if err != nil {
		return err
	}

	if draft != nil {
		malo, err := s.contractRepo.FindMaLoDraftByDraftID(ctx, s.db, draft.ID)
		if err != nil {
			return err
		}
		if malo != nil {
			return s.resume(ctx, draft, malo)
		}
		if err := s.contractRepo.DeleteDraft(ctx, s.db, draft.ID); err != nil {
			return err
		}
	}

	s.markSaga(ctx, s.db, saga.ContractID, domain.SagaCompensated, nil, errSagaInterrupted)
	s.log.Info("interrupted saga compensated", zap.String("contract_id", saga.ContractID))
	return nil
}

var errSagaInterrupted = errors.New("saga_interrupted")

// resume finishes a saga whose drafts were both written. The event is only
// appended when none was recorded for the contract.
func (s *Service) resume(ctx context.Context, draft *contractdomain.ContractDraft, malo *contractdomain.MaLoDraft) error {
	events, err := s.audit.List(ctx, draft.ContractID)
	if err != nil {
		return err
	}
	appendEvent := true
	for _, evt := range events {
		if evt.EventType == auditdomain.EventDraftCreated {
			appendEvent = false
			break
		}
	}

	details := draftCreatedDetails(draft, malo)
	details["recovered"] = true
	// A draft decided elsewhere needs no job.
	enqueue := draft.VerificationStatus == contractdomain.VerificationPending
	if _, err := s.complete(ctx, s.db, draft, details, appendEvent, enqueue); err != nil {
		return err
	}
	s.log.Info("interrupted saga completed", zap.String("contract_id", draft.ContractID))
	return nil
}

func (s *Service) findSagaDraft(ctx context.Context, saga domain.Saga) (*contractdomain.ContractDraft, error) {
	if saga.ContractDraftID != nil {
		return s.contractRepo.FindDraftByID(ctx, s.db, *saga.ContractDraftID)
	}
	// the draft may have been written before the step update was lost
	return s.contractRepo.FindDraftByContractID(ctx, s.db, saga.ContractID)
}

// zipCodeFor prefers the customer's postal code and falls back to the tariff
// id suffix, e.g. "standard-10115".
func zipCodeFor(req domain.ImportRequest) string {
	if zip, err := tariffdomain.NormalizeZipCode(req.Customer.ZipCode); err == nil {
		return zip
	}
	tariffID := strings.TrimSpace(req.Contract.TariffID)
	if i := strings.LastIndex(tariffID, "-"); i >= 0 {
		return tariffID[i+1:]
	}
	return ""
}

func newContractID(prefix string) string {
	return prefix + domain.ContractIDPrefix + ulid.Make().String()
}
