package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type SagaStep string

const (
	SagaStarted      SagaStep = "STARTED"
	SagaDraftCreated SagaStep = "DRAFT_CREATED"
	SagaCompleted    SagaStep = "COMPLETED"
	SagaCompensated  SagaStep = "COMPENSATED"
)

// Pending reports whether the saga still has work or compensation outstanding.
func (s SagaStep) Pending() bool {
	return s == SagaStarted || s == SagaDraftCreated
}

// Saga is the durable step log of one import, keyed by the contract id.
type Saga struct {
	ContractID      string        `gorm:"primaryKey" json:"contract_id"`
	Step            SagaStep      `gorm:"type:varchar(16);not null;index" json:"step"`
	ContractDraftID *snowflake.ID `json:"contract_draft_id,omitempty"`
	LastError       *string       `json:"last_error,omitempty"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;index" json:"updated_at"`
}

func (Saga) TableName() string { return "onboarding_sagas" }

type CustomerInput struct {
	Email       string `json:"email" binding:"required,email"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	ZipCode     string `json:"zipCode"`
	City        string `json:"city"`
}

type ContractInput struct {
	CampaignKey          string `json:"campaignKey"`
	TariffID             string `json:"tariffId" binding:"required"`
	EstimatedConsumption int64  `json:"estimatedConsumption" binding:"gte=0"`
	// DesiredStartDate is a calendar date, YYYY-MM-DD.
	DesiredStartDate string `json:"desiredStartDate"`
	IBAN             string `json:"iban"`
	SepaMandate      bool   `json:"sepaMandate"`
	VoucherCode      string `json:"voucherCode"`
}

type MeterLocationInput struct {
	MaLoID              string `json:"maloId"`
	HasOwnMsb           bool   `json:"hasOwnMsb"`
	MeterNumber         string `json:"meterNumber"`
	PreviousProviderID  string `json:"previousProviderId"`
	PreviousConsumption int64  `json:"previousConsumption" binding:"gte=0"`
}

// ImportRequest is one order received from a sales funnel.
type ImportRequest struct {
	FunnelID      string             `json:"funnelId" binding:"required"`
	Customer      CustomerInput      `json:"customer" binding:"required"`
	Contract      ContractInput      `json:"contract" binding:"required"`
	MeterLocation MeterLocationInput `json:"meterLocation"`
}

type ImportResult struct {
	ContractID        string `json:"contractId"`
	DraftID           string `json:"draftId"`
	MaLoDraftID       string `json:"maloDraftId"`
	VerificationJobID string `json:"verificationJobId,omitempty"`
	// Degraded is set when the import ran on the in-process fallback store.
	// Identifiers then carry the MOCK- prefix.
	Degraded bool `json:"degraded"`
}
