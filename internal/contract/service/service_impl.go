package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/contract/domain"
	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("contract.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListContractDrafts(ctx context.Context, req domain.ListDraftsRequest) (domain.ListDraftsResponse, error) {
	var filter domain.DraftFilter
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil || customerID == 0 {
			return domain.ListDraftsResponse{}, domain.ErrInvalidCustomerID
		}
		filter.CustomerID = customerID
	}

	items, err := s.repo.ListDrafts(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return domain.ListDraftsResponse{}, err
	}

	page, info, err := pagination.BuildCursorPage(items, req.Pagination.Limit(), func(d domain.ContractDraft) int64 {
		return d.ID.Int64()
	})
	if err != nil {
		return domain.ListDraftsResponse{}, err
	}
	return domain.ListDraftsResponse{Drafts: page, PageInfo: info}, nil
}

func (s *Service) GetMaLoDraftsByContractID(ctx context.Context, contractID string) ([]domain.MaLoDraft, error) {
	contractID = strings.TrimSpace(contractID)
	if contractID == "" {
		return nil, domain.ErrInvalidContractID
	}

	draft, err := s.repo.FindDraftByContractID(ctx, s.db, contractID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, domain.ErrDraftNotFound
	}
	return s.repo.ListMaLoDraftsByContractID(ctx, s.db, contractID)
}
