package domain

import (
	"context"
	"errors"

	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
)

type Service interface {
	// ConfirmSwitch activates the contract draft behind an approved market
	// location draft. It succeeds at most once per draft.
	ConfirmSwitch(ctx context.Context, maloDraftID string, actor string) (contractdomain.Contract, error)
}

var (
	ErrDraftNotApproved = errors.New("draft_not_approved")
	ErrAlreadyActive    = errors.New("contract_already_active")
	ErrInvalidActor     = errors.New("invalid_actor")
)
