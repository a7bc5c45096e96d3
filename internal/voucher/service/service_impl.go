package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/funnel"
	"github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("voucher.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) WithDB(db *gorm.DB) domain.Service {
	clone := *s
	clone.db = db
	return &clone
}

func (s *Service) Create(ctx context.Context, req domain.CreateVoucherRequest) (domain.Voucher, error) {
	code := normalizeCode(req.VoucherCode)
	if code == "" || len(code) > 64 {
		return domain.Voucher{}, domain.ErrInvalidCode
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return domain.Voucher{}, domain.ErrInvalidWindow
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return domain.Voucher{}, domain.ErrInvalidWindow
	}
	if end.Before(start) {
		return domain.Voucher{}, domain.ErrInvalidWindow
	}

	if err := validateDiscount(req); err != nil {
		return domain.Voucher{}, err
	}

	var funnelID *string
	if req.FunnelID != nil {
		if normalized := funnel.Normalize(*req.FunnelID); normalized != "" {
			funnelID = &normalized
		}
	}

	voucher := domain.Voucher{
		ID:                   s.genID.Generate(),
		VoucherCode:          code,
		FunnelID:             funnelID,
		StartDate:            start,
		EndDate:              end,
		WorkingPriceDiscount: req.WorkingPriceDiscount,
		BasePriceDiscount:    req.BasePriceDiscount,
		DiscountPercent:      req.DiscountPercent,
		CreatedAt:            s.clock.Now(),
	}

	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Voucher{}, err
	}
	if existing != nil {
		return domain.Voucher{}, domain.ErrDuplicateCode
	}

	if err := s.repo.Insert(ctx, s.db, &voucher); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Voucher{}, domain.ErrDuplicateCode
		}
		return domain.Voucher{}, err
	}

	s.log.Info("voucher created",
		zap.String("voucher_code", voucher.VoucherCode),
		zap.String("voucher_id", voucher.ID.String()),
	)
	return voucher, nil
}

func (s *Service) List(ctx context.Context, req domain.ListVoucherRequest) (domain.ListVoucherResponse, error) {
	filter := req
	filter.FunnelID = funnel.Normalize(req.FunnelID)

	items, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return domain.ListVoucherResponse{}, err
	}

	page, info, err := pagination.BuildCursorPage(items, req.Pagination.Limit(), func(v domain.Voucher) int64 {
		return v.ID.Int64()
	})
	if err != nil {
		return domain.ListVoucherResponse{}, err
	}
	return domain.ListVoucherResponse{Vouchers: page, PageInfo: info}, nil
}

// Resolve returns the voucher for code when it is usable by funnelID on today.
// Every rejection wraps domain.ErrNotApplicable.
func (s *Service) Resolve(ctx context.Context, code, funnelID string, today time.Time) (domain.Voucher, error) {
	code = normalizeCode(code)
	if code == "" {
		return domain.Voucher{}, domain.ErrNotFound
	}

	voucher, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Voucher{}, err
	}
	if voucher == nil {
		return domain.Voucher{}, domain.ErrNotFound
	}

	switch {
	case voucher.StartsAfter(today):
		return domain.Voucher{}, domain.ErrNotYetActive
	case !voucher.ActiveOn(today):
		return domain.Voucher{}, domain.ErrExpired
	case !voucher.AppliesToFunnel(funnel.Normalize(funnelID)):
		return domain.Voucher{}, domain.ErrFunnelMismatch
	}

	return *voucher, nil
}

func validateDiscount(req domain.CreateVoucherRequest) error {
	if req.WorkingPriceDiscount.IsNegative() || req.BasePriceDiscount.IsNegative() {
		return domain.ErrInvalidDiscount
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrInvalidDiscount
	}
	if req.WorkingPriceDiscount.IsZero() && req.BasePriceDiscount.IsZero() && req.DiscountPercent.IsZero() {
		return domain.ErrInvalidDiscount
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(value))
}
