package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/contract/domain"
	"github.com/enfinitus/onboarding/pkg/db/option"
	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertDraft(ctx context.Context, db *gorm.DB, draft *domain.ContractDraft) error {
	return db.WithContext(ctx).Create(draft).Error
}

func (r *repo) DeleteDraft(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ContractDraft{}).Error
}

func (r *repo) FindDraftByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ContractDraft, error) {
	return takeOne[domain.ContractDraft](db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindDraftByContractID(ctx context.Context, db *gorm.DB, contractID string) (*domain.ContractDraft, error) {
	return takeOne[domain.ContractDraft](db.WithContext(ctx).Where("contract_id = ?", contractID))
}

func (r *repo) ListDrafts(ctx context.Context, db *gorm.DB, filter domain.DraftFilter, page pagination.Pagination) ([]domain.ContractDraft, error) {
	stmt := db.WithContext(ctx).Model(&domain.ContractDraft{})
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.WithSortBy(option.QuerySortBy{}).Apply(stmt)
	stmt = option.ApplyPagination(page).Apply(stmt)

	var items []domain.ContractDraft
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SetDraftVerification(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.VerificationStatus, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.ContractDraft{}).
		Where("id = ? AND verification_status = ?", id, domain.VerificationPending).
		Updates(map[string]any{
			"verification_status": status,
			"updated_at":          at,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) ActivateDraft(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.ContractDraft{}).
		Where("id = ? AND status = ?", id, domain.DraftStatusDraft).
		Updates(map[string]any{
			"status":     domain.DraftStatusActive,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) InsertMaLoDraft(ctx context.Context, db *gorm.DB, malo *domain.MaLoDraft) error {
	return db.WithContext(ctx).Create(malo).Error
}

func (r *repo) FindMaLoDraftByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MaLoDraft, error) {
	return takeOne[domain.MaLoDraft](db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindMaLoDraftByDraftID(ctx context.Context, db *gorm.DB, draftID snowflake.ID) (*domain.MaLoDraft, error) {
	return takeOne[domain.MaLoDraft](db.WithContext(ctx).Where("contract_draft_id = ?", draftID))
}

func (r *repo) ListMaLoDraftsByContractID(ctx context.Context, db *gorm.DB, contractID string) ([]domain.MaLoDraft, error) {
	var items []domain.MaLoDraft
	err := db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SetMaLoVerification(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.VerificationStatus, scoreAccepted bool, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.MaLoDraft{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"draft_status":   status,
			"score_accepted": scoreAccepted,
			"updated_at":     at,
		}).Error
}

func (r *repo) UpdateMaLoDraft(ctx context.Context, db *gorm.DB, id snowflake.ID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.MaLoDraft{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) InsertContract(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).Create(contract).Error
}

func (r *repo) FindContractByDraftID(ctx context.Context, db *gorm.DB, draftID snowflake.ID) (*domain.Contract, error) {
	return takeOne[domain.Contract](db.WithContext(ctx).Where("contract_draft_id = ?", draftID))
}

func (r *repo) InsertFinalMarketLocation(ctx context.Context, db *gorm.DB, malo *domain.FinalMarketLocation) error {
	return db.WithContext(ctx).Create(malo).Error
}

func (r *repo) ListFinalMarketLocations(ctx context.Context, db *gorm.DB, contractID string) ([]domain.FinalMarketLocation, error) {
	var items []domain.FinalMarketLocation
	err := db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func takeOne[T any](stmt *gorm.DB) (*T, error) {
	var item T
	if err := stmt.Take(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}
