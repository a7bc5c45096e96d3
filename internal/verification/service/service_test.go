package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	auditrepo "github.com/enfinitus/onboarding/internal/audit/repository"
	auditservice "github.com/enfinitus/onboarding/internal/audit/service"
	"github.com/enfinitus/onboarding/internal/clock"
	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
	contractrepo "github.com/enfinitus/onboarding/internal/contract/repository"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/enfinitus/onboarding/internal/verification/domain"
	"github.com/enfinitus/onboarding/internal/verification/repository"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	node    *snowflake.Node
	audit   auditdomain.Service
	svc     domain.Service
	decided *int32
}

func newFixture(t *testing.T, decider domain.Decider) fixture {
	t.Helper()

	conn, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	models := append(contractdomain.Models(), &auditdomain.ContractEvent{}, &domain.Job{})
	require.NoError(t, conn.AutoMigrate(models...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	log := zaptest.NewLogger(t)

	var decided int32
	counting := domain.DeciderFunc(func(ctx context.Context, d contractdomain.ContractDraft, m contractdomain.MaLoDraft) (domain.Outcome, error) {
		atomic.AddInt32(&decided, 1)
		return decider.Decide(ctx, d, m)
	})

	audit := auditservice.NewService(auditservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  auditrepo.Provide(),
	})

	svc := New(Params{
		DB:           conn,
		Log:          log,
		GenID:        node,
		Clock:        fake,
		Repo:         repository.Provide(),
		ContractRepo: contractrepo.Provide(),
		Audit:        audit,
		Decider:      counting,
	})

	return fixture{db: conn, clock: fake, node: node, audit: audit, svc: svc, decided: &decided}
}

func (f fixture) seedDraft(t *testing.T, contractID string) (contractdomain.ContractDraft, contractdomain.MaLoDraft) {
	t.Helper()

	now := f.clock.Now()
	draft := contractdomain.ContractDraft{
		ID:                   f.node.Generate(),
		ContractID:           contractID,
		FunnelID:             "enfinitus-website",
		CustomerID:           f.node.Generate(),
		CampaignID:           f.node.Generate(),
		TariffType:           tariffdomain.TariffStandard,
		WorkingPrice:         decimal.RequireFromString("29.385"),
		BasePrice:            decimal.RequireFromString("11.61"),
		PriceSource:          contractdomain.PriceSourceSnapshot,
		EstimatedConsumption: 2500,
		IBAN:                 "DE89370400440532013000",
		SepaMandate:          true,
		VerificationStatus:   contractdomain.VerificationPending,
		Status:               contractdomain.DraftStatusDraft,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	require.NoError(t, f.db.Create(&draft).Error)

	malo := contractdomain.MaLoDraft{
		ID:              f.node.Generate(),
		ContractDraftID: draft.ID,
		ContractID:      contractID,
		MaLoID:          "50123456789",
		MeterNumber:     "1ESY1160123456",
		DraftStatus:     contractdomain.VerificationPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, f.db.Create(&malo).Error)
	return draft, malo
}

func (f fixture) reload(t *testing.T, draftID, maloID snowflake.ID) (contractdomain.ContractDraft, contractdomain.MaLoDraft) {
	t.Helper()
	var draft contractdomain.ContractDraft
	require.NoError(t, f.db.Where("id = ?", draftID).Take(&draft).Error)
	var malo contractdomain.MaLoDraft
	require.NoError(t, f.db.Where("id = ?", maloID).Take(&malo).Error)
	return draft, malo
}

func TestVerify_Approve(t *testing.T) {
	f := newFixture(t, domain.FixedDecider(domain.OutcomeApproved))
	ctx := context.Background()
	draft, malo := f.seedDraft(t, "CT-1")

	outcome, err := f.svc.Verify(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApproved, outcome)

	gotDraft, gotMalo := f.reload(t, draft.ID, malo.ID)
	assert.Equal(t, contractdomain.VerificationApproved, gotDraft.VerificationStatus)
	assert.Equal(t, contractdomain.DraftStatusDraft, gotDraft.Status)
	assert.Equal(t, contractdomain.VerificationApproved, gotMalo.DraftStatus)
	require.NotNil(t, gotMalo.ScoreAccepted)
	assert.True(t, *gotMalo.ScoreAccepted)

	events, err := f.audit.List(ctx, "CT-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, auditdomain.EventValidationPassed, events[0].EventType)
}

func TestVerify_Reject(t *testing.T) {
	f := newFixture(t, domain.FixedDecider(domain.OutcomeRejected))
	ctx := context.Background()
	draft, malo := f.seedDraft(t, "CT-2")

	outcome, err := f.svc.Verify(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejected, outcome)

	gotDraft, gotMalo := f.reload(t, draft.ID, malo.ID)
	assert.Equal(t, contractdomain.VerificationRejected, gotDraft.VerificationStatus)
	assert.Equal(t, contractdomain.VerificationRejected, gotMalo.DraftStatus)
	require.NotNil(t, gotMalo.ScoreAccepted)
	assert.False(t, *gotMalo.ScoreAccepted)

	events, err := f.audit.List(ctx, "CT-2")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, auditdomain.EventValidationFailed, events[0].EventType)
}

func TestVerify_DecidedDraftIsNoop(t *testing.T) {
	f := newFixture(t, domain.FixedDecider(domain.OutcomeApproved))
	ctx := context.Background()
	draft, _ := f.seedDraft(t, "CT-3")

	_, err := f.svc.Verify(ctx, draft.ID)
	require.NoError(t, err)
	outcome, err := f.svc.Verify(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApproved, outcome)

	assert.Equal(t, int32(1), atomic.LoadInt32(f.decided))
	events, err := f.audit.List(ctx, "CT-3")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestVerify_Errors(t *testing.T) {
	boom := errors.New("scoring unavailable")
	f := newFixture(t, domain.DeciderFunc(func(context.Context, contractdomain.ContractDraft, contractdomain.MaLoDraft) (domain.Outcome, error) {
		return "", boom
	}))
	ctx := context.Background()

	_, err := f.svc.Verify(ctx, snowflake.ID(12345))
	assert.ErrorIs(t, err, contractdomain.ErrDraftNotFound)

	draft, malo := f.seedDraft(t, "CT-4")
	_, err = f.svc.Verify(ctx, draft.ID)
	assert.ErrorIs(t, err, boom)

	gotDraft, gotMalo := f.reload(t, draft.ID, malo.ID)
	assert.Equal(t, contractdomain.VerificationPending, gotDraft.VerificationStatus)
	assert.Equal(t, contractdomain.VerificationPending, gotMalo.DraftStatus)
}

func TestJobs_CancelAndExecute(t *testing.T) {
	f := newFixture(t, domain.FixedDecider(domain.OutcomeApproved))
	ctx := context.Background()
	draft, _ := f.seedDraft(t, "CT-5")

	canceled, err := f.svc.Enqueue(ctx, nil, draft.ContractID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobQueued, canceled.Status)

	got, err := f.svc.Cancel(ctx, canceled.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.JobCanceled, got.Status)
	assert.NotNil(t, got.FinishedAt)

	_, err = f.svc.Cancel(ctx, canceled.ID.String())
	assert.ErrorIs(t, err, domain.ErrJobNotCancelable)

	job, err := f.svc.Enqueue(ctx, nil, draft.ContractID, draft.ID)
	require.NoError(t, err)

	claimed, err := f.svc.ClaimQueued(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, job.ID, claimed[0].ID)
	assert.Equal(t, domain.JobRunning, claimed[0].Status)
	assert.Equal(t, 1, claimed[0].Attempts)

	_, err = f.svc.Cancel(ctx, job.ID.String())
	assert.ErrorIs(t, err, domain.ErrJobNotCancelable)

	done, err := f.svc.Execute(ctx, claimed[0])
	require.NoError(t, err)
	assert.Equal(t, domain.JobSucceeded, done.Status)
	require.NotNil(t, done.Outcome)
	assert.Equal(t, "APPROVED", *done.Outcome)

	fetched, err := f.svc.GetJob(ctx, job.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.JobSucceeded, fetched.Status)

	_, err = f.svc.GetJob(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidJobID)
	_, err = f.svc.GetJob(ctx, "999")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestExecute_RetriesUntilAttemptLimit(t *testing.T) {
	f := newFixture(t, domain.DeciderFunc(func(context.Context, contractdomain.ContractDraft, contractdomain.MaLoDraft) (domain.Outcome, error) {
		return "", errors.New("scoring unavailable")
	}))
	ctx := context.Background()
	draft, _ := f.seedDraft(t, "CT-6")

	_, err := f.svc.Enqueue(ctx, nil, draft.ContractID, draft.ID)
	require.NoError(t, err)

	var last domain.Job
	for attempt := 1; attempt <= defaultMaxAttempts; attempt++ {
		claimed, err := f.svc.ClaimQueued(ctx, 1)
		require.NoError(t, err)
		require.Len(t, claimed, 1, "attempt %d", attempt)

		last, err = f.svc.Execute(ctx, claimed[0])
		require.Error(t, err)
		assert.Equal(t, attempt, last.Attempts)
	}

	assert.Equal(t, domain.JobFailed, last.Status)
	require.NotNil(t, last.LastError)
	assert.Contains(t, *last.LastError, "scoring unavailable")

	claimed, err := f.svc.ClaimQueued(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestRequeueStale(t *testing.T) {
	f := newFixture(t, domain.FixedDecider(domain.OutcomeApproved))
	ctx := context.Background()
	draft, _ := f.seedDraft(t, "CT-7")

	job, err := f.svc.Enqueue(ctx, nil, draft.ContractID, draft.ID)
	require.NoError(t, err)
	claimed, err := f.svc.ClaimQueued(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	n, err := f.svc.RequeueStale(ctx, 5*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(10 * time.Minute)
	n, err = f.svc.RequeueStale(ctx, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.svc.GetJob(ctx, job.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.JobQueued, got.Status)
}

func TestRandomDecider_Bounds(t *testing.T) {
	ctx := context.Background()
	always := domain.RandomDecider(1.5)
	never := domain.RandomDecider(-1)

	for i := 0; i < 20; i++ {
		outcome, err := always.Decide(ctx, contractdomain.ContractDraft{}, contractdomain.MaLoDraft{})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeApproved, outcome)

		outcome, err = never.Decide(ctx, contractdomain.ContractDraft{}, contractdomain.MaLoDraft{})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeRejected, outcome)
	}
}
