package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	auditrepo "github.com/enfinitus/onboarding/internal/audit/repository"
	auditservice "github.com/enfinitus/onboarding/internal/audit/service"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/contract/domain"
	"github.com/enfinitus/onboarding/internal/contract/repository"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
	ops   *OpsQuery
	audit auditdomain.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(append(domain.Models(), &auditdomain.ContractEvent{})...))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC))
	log := zaptest.NewLogger(t)

	svc := New(Params{DB: conn, Log: log, Repo: repository.Provide()})
	audit := auditservice.NewService(auditservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  auditrepo.Provide(),
	})
	return fixture{
		db:    conn,
		node:  node,
		clock: fake,
		svc:   svc,
		audit: audit,
		ops:   NewOpsQuery(OpsQueryParams{Drafts: svc, Audit: audit}),
	}
}

func (f fixture) seedDraft(t *testing.T, customerID snowflake.ID) domain.ContractDraft {
	t.Helper()
	now := f.clock.Now()
	draft := domain.ContractDraft{
		ID:                 f.node.Generate(),
		ContractID:         "CT-" + f.node.Generate().String(),
		FunnelID:           "enfinitus-website",
		CustomerID:         customerID,
		CampaignID:         f.node.Generate(),
		TariffType:         tariffdomain.TariffGreen,
		WorkingPrice:       decimal.RequireFromString("35.2"),
		BasePrice:          decimal.RequireFromString("14.5"),
		PriceSource:        domain.PriceSourceCampaign,
		VerificationStatus: domain.VerificationPending,
		Status:             domain.DraftStatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, f.db.Create(&draft).Error)
	return draft
}

func (f fixture) seedMaLo(t *testing.T, draft domain.ContractDraft, maloID string) domain.MaLoDraft {
	t.Helper()
	now := f.clock.Now()
	malo := domain.MaLoDraft{
		ID:              f.node.Generate(),
		ContractDraftID: draft.ID,
		ContractID:      draft.ContractID,
		MaLoID:          maloID,
		DraftStatus:     domain.VerificationPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, f.db.Create(&malo).Error)
	return malo
}

func TestListContractDrafts_FilterAndPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.node.Generate()
	other := f.node.Generate()
	first := f.seedDraft(t, customer)
	second := f.seedDraft(t, customer)
	third := f.seedDraft(t, customer)
	f.seedDraft(t, other)

	page1, err := f.svc.ListContractDrafts(ctx, domain.ListDraftsRequest{
		CustomerID: customer.String(),
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, page1.Drafts, 2)
	assert.True(t, page1.PageInfo.HasMore)
	assert.Equal(t, third.ID, page1.Drafts[0].ID)
	assert.Equal(t, second.ID, page1.Drafts[1].ID)

	page2, err := f.svc.ListContractDrafts(ctx, domain.ListDraftsRequest{
		CustomerID: customer.String(),
		Pagination: pagination.Pagination{PageSize: 2, PageToken: page1.PageInfo.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, page2.Drafts, 1)
	assert.False(t, page2.PageInfo.HasMore)
	assert.Equal(t, first.ID, page2.Drafts[0].ID)

	all, err := f.svc.ListContractDrafts(ctx, domain.ListDraftsRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Drafts, 4)
}

func TestListContractDrafts_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListContractDrafts(ctx, domain.ListDraftsRequest{CustomerID: "not-a-number"})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomerID)

	_, err = f.svc.ListContractDrafts(ctx, domain.ListDraftsRequest{
		Pagination: pagination.Pagination{PageToken: "%%%"},
	})
	assert.ErrorIs(t, err, pagination.ErrInvalidPageToken)
}

func TestGetMaLoDraftsByContractID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.seedDraft(t, f.node.Generate())
	malo := f.seedMaLo(t, draft, "51238696781")

	got, err := f.ops.GetMaLoDraftsByContractID(ctx, draft.ContractID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, malo.ID, got[0].ID)

	_, err = f.svc.GetMaLoDraftsByContractID(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidContractID)

	_, err = f.svc.GetMaLoDraftsByContractID(ctx, "CT-UNKNOWN")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestOpsQuery_ListContractEventsInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.seedDraft(t, f.node.Generate())

	for _, eventType := range []auditdomain.EventType{auditdomain.EventDraftCreated, auditdomain.EventValidationPassed, auditdomain.EventManualEdit} {
		_, err := f.audit.Record(ctx, auditdomain.AppendRequest{
			ContractID: draft.ContractID,
			EventType:  eventType,
			Actor:      "system",
		})
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	events, err := f.ops.ListContractEvents(ctx, draft.ContractID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, auditdomain.EventDraftCreated, events[0].EventType)
	assert.Equal(t, auditdomain.EventValidationPassed, events[1].EventType)
	assert.Equal(t, auditdomain.EventManualEdit, events[2].EventType)
}
