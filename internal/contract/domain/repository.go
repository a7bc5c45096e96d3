package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"gorm.io/gorm"
)

type DraftFilter struct {
	CustomerID snowflake.ID
	Status     DraftStatus
}

type Repository interface {
	InsertDraft(ctx context.Context, db *gorm.DB, draft *ContractDraft) error
	DeleteDraft(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindDraftByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ContractDraft, error)
	FindDraftByContractID(ctx context.Context, db *gorm.DB, contractID string) (*ContractDraft, error)
	ListDrafts(ctx context.Context, db *gorm.DB, filter DraftFilter, page pagination.Pagination) ([]ContractDraft, error)
	// SetDraftVerification moves a PENDING draft to status and reports the rows changed.
	SetDraftVerification(ctx context.Context, db *gorm.DB, id snowflake.ID, status VerificationStatus, at time.Time) (int64, error)
	// ActivateDraft moves a DRAFT draft to ACTIVE and reports the rows changed.
	ActivateDraft(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error)

	InsertMaLoDraft(ctx context.Context, db *gorm.DB, malo *MaLoDraft) error
	FindMaLoDraftByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MaLoDraft, error)
	FindMaLoDraftByDraftID(ctx context.Context, db *gorm.DB, draftID snowflake.ID) (*MaLoDraft, error)
	ListMaLoDraftsByContractID(ctx context.Context, db *gorm.DB, contractID string) ([]MaLoDraft, error)
	SetMaLoVerification(ctx context.Context, db *gorm.DB, id snowflake.ID, status VerificationStatus, scoreAccepted bool, at time.Time) error
	UpdateMaLoDraft(ctx context.Context, db *gorm.DB, id snowflake.ID, updates map[string]any) error

	InsertContract(ctx context.Context, db *gorm.DB, contract *Contract) error
	FindContractByDraftID(ctx context.Context, db *gorm.DB, draftID snowflake.ID) (*Contract, error)
	InsertFinalMarketLocation(ctx context.Context, db *gorm.DB, malo *FinalMarketLocation) error
	ListFinalMarketLocations(ctx context.Context, db *gorm.DB, contractID string) ([]FinalMarketLocation, error)
}
