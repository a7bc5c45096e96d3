package domain

import (
	"context"
	"errors"

	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
)

// Editable fields of a market location draft. FieldNotes is kept in the
// draft's manual payload.
const (
	FieldMaLoID              = "malo_id"
	FieldMeterNumber         = "meter_number"
	FieldPreviousProviderID  = "previous_provider_id"
	FieldPreviousConsumption = "previous_consumption"
	FieldHasOwnMsb           = "has_own_msb"
	FieldNotes               = "notes"
)

type Service interface {
	// UpdateMaLoDraft applies an operator patch to a market location draft and
	// records it as a MANUAL_EDIT event. The verification status is unchanged.
	UpdateMaLoDraft(ctx context.Context, maloDraftID string, fields map[string]any, actor string) (contractdomain.MaLoDraft, error)
}

var (
	ErrFieldNotEditable  = errors.New("field_not_editable")
	ErrInvalidFieldValue = errors.New("invalid_field_value")
	ErrEmptyPatch        = errors.New("empty_patch")
	ErrInvalidActor      = errors.New("invalid_actor")
	ErrDraftActive       = errors.New("contract_draft_active")
)
