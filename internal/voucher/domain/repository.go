package domain

import (
	"context"

	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, voucher *Voucher) error
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Voucher, error)
	List(ctx context.Context, db *gorm.DB, filter ListVoucherRequest, page pagination.Pagination) ([]Voucher, error)
}
