package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateVoucherRequest) (Voucher, error)
	List(ctx context.Context, req ListVoucherRequest) (ListVoucherResponse, error)
	Resolve(ctx context.Context, code, funnelID string, today time.Time) (Voucher, error)
	WithDB(db *gorm.DB) Service
}

type CreateVoucherRequest struct {
	VoucherCode          string          `json:"voucher_code"`
	FunnelID             *string         `json:"funnel_id"`
	StartDate            string          `json:"start_date"`
	EndDate              string          `json:"end_date"`
	WorkingPriceDiscount decimal.Decimal `json:"working_price_discount"`
	BasePriceDiscount    decimal.Decimal `json:"base_price_discount"`
	DiscountPercent      decimal.Decimal `json:"discount_percent"`
}

type ListVoucherRequest struct {
	FunnelID string
	pagination.Pagination
}

type ListVoucherResponse struct {
	Vouchers []Voucher           `json:"vouchers"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidCode     = errors.New("invalid_voucher_code")
	ErrInvalidWindow   = errors.New("invalid_voucher_window")
	ErrInvalidDiscount = errors.New("invalid_voucher_discount")
	ErrDuplicateCode   = errors.New("duplicate_voucher_code")

	// ErrNotApplicable is the parent of every reason a voucher cannot be used
	// for an order.
	ErrNotApplicable  = errors.New("voucher_not_applicable")
	ErrNotFound       = fmt.Errorf("%w: voucher_not_found", ErrNotApplicable)
	ErrNotYetActive   = fmt.Errorf("%w: voucher_not_yet_active", ErrNotApplicable)
	ErrExpired        = fmt.Errorf("%w: voucher_expired", ErrNotApplicable)
	ErrFunnelMismatch = fmt.Errorf("%w: voucher_funnel_mismatch", ErrNotApplicable)
)
