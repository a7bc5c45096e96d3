package domain

import (
	"context"
	"errors"

	"github.com/enfinitus/onboarding/pkg/db/pagination"
)

type ListDraftsRequest struct {
	CustomerID string
	pagination.Pagination
}

type ListDraftsResponse struct {
	Drafts   []ContractDraft     `json:"contract_drafts"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

// Service reads contract drafts for the operations console.
type Service interface {
	ListContractDrafts(ctx context.Context, req ListDraftsRequest) (ListDraftsResponse, error)
	GetMaLoDraftsByContractID(ctx context.Context, contractID string) ([]MaLoDraft, error)
}

var (
	ErrInvalidContractID  = errors.New("invalid_contract_id")
	ErrInvalidCustomerID  = errors.New("invalid_customer_id")
	ErrDraftNotFound      = errors.New("contract_draft_not_found")
	ErrMaLoDraftNotFound  = errors.New("malo_draft_not_found")
	ErrInvalidMaLoDraftID = errors.New("invalid_malo_draft_id")
)
