package service

import (
	"context"

	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	campaigndomain "github.com/enfinitus/onboarding/internal/campaign/domain"
	"github.com/enfinitus/onboarding/internal/contract/domain"
	margindomain "github.com/enfinitus/onboarding/internal/margin/domain"
	verificationdomain "github.com/enfinitus/onboarding/internal/verification/domain"
	voucherdomain "github.com/enfinitus/onboarding/internal/voucher/domain"
	"go.uber.org/fx"
)

type OpsQueryParams struct {
	fx.In

	Drafts       domain.Service
	Campaigns    campaigndomain.Service
	Vouchers     voucherdomain.Service
	Margins      margindomain.Service
	Audit        auditdomain.Service
	Verification verificationdomain.Service
}

// OpsQuery is the operations console's view over reference data, drafts,
// events and verification jobs.
type OpsQuery struct {
	drafts       domain.Service
	campaigns    campaigndomain.Service
	vouchers     voucherdomain.Service
	margins      margindomain.Service
	audit        auditdomain.Service
	verification verificationdomain.Service
}

func NewOpsQuery(p OpsQueryParams) *OpsQuery {
	return &OpsQuery{
		drafts:       p.Drafts,
		campaigns:    p.Campaigns,
		vouchers:     p.Vouchers,
		margins:      p.Margins,
		audit:        p.Audit,
		verification: p.Verification,
	}
}

func (q *OpsQuery) ListCampaigns(ctx context.Context, publishedOnly bool) ([]campaigndomain.Campaign, error) {
	return q.campaigns.List(ctx, campaigndomain.ListCampaignRequest{PublishedOnly: publishedOnly})
}

func (q *OpsQuery) ListVouchers(ctx context.Context, req voucherdomain.ListVoucherRequest) (voucherdomain.ListVoucherResponse, error) {
	return q.vouchers.List(ctx, req)
}

func (q *OpsQuery) CreateVoucher(ctx context.Context, req voucherdomain.CreateVoucherRequest) (voucherdomain.Voucher, error) {
	return q.vouchers.Create(ctx, req)
}

func (q *OpsQuery) ListContractDrafts(ctx context.Context, req domain.ListDraftsRequest) (domain.ListDraftsResponse, error) {
	return q.drafts.ListContractDrafts(ctx, req)
}

func (q *OpsQuery) GetMaLoDraftsByContractID(ctx context.Context, contractID string) ([]domain.MaLoDraft, error) {
	return q.drafts.GetMaLoDraftsByContractID(ctx, contractID)
}

func (q *OpsQuery) ListContractEvents(ctx context.Context, contractID string) ([]auditdomain.ContractEvent, error) {
	return q.audit.List(ctx, contractID)
}

func (q *OpsQuery) UpsertMargin(ctx context.Context, req margindomain.UpsertMarginRequest) (margindomain.Margin, error) {
	return q.margins.Upsert(ctx, req)
}

func (q *OpsQuery) ListMargins(ctx context.Context, funnelID string) ([]margindomain.Margin, error) {
	return q.margins.List(ctx, funnelID)
}

func (q *OpsQuery) GetVerificationJob(ctx context.Context, jobID string) (verificationdomain.Job, error) {
	return q.verification.GetJob(ctx, jobID)
}

func (q *OpsQuery) CancelVerificationJob(ctx context.Context, jobID string) (verificationdomain.Job, error) {
	return q.verification.Cancel(ctx, jobID)
}
