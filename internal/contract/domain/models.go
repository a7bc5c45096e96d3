package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

type DraftStatus string

const (
	DraftStatusDraft  DraftStatus = "DRAFT"
	DraftStatusActive DraftStatus = "ACTIVE"
)

type PriceSource string

const (
	PriceSourceSnapshot PriceSource = "SNAPSHOT"
	PriceSourceCampaign PriceSource = "CAMPAIGN"
)

const (
	ContractStatusActive    = "active"
	ChangeProcessInProgress = "IN_PROGRESS"
)

// ContractDraft is an imported order awaiting verification and activation.
// Prices are the effective prices after any voucher discount.
type ContractDraft struct {
	ID                   snowflake.ID            `gorm:"primaryKey" json:"id"`
	ContractID           string                  `gorm:"not null;uniqueIndex" json:"contract_id"`
	FunnelID             string                  `gorm:"not null" json:"funnel_id"`
	CustomerID           snowflake.ID            `gorm:"not null;index" json:"customer_id"`
	CampaignID           snowflake.ID            `gorm:"not null" json:"campaign_id"`
	VoucherID            *snowflake.ID           `json:"voucher_id,omitempty"`
	SnapshotID           *snowflake.ID           `json:"snapshot_id,omitempty"`
	TariffType           tariffdomain.TariffType `gorm:"type:varchar(16);not null" json:"tariff_type"`
	WorkingPrice         decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"working_price"`
	BasePrice            decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"base_price"`
	WorkingPriceDiscount decimal.Decimal         `gorm:"type:numeric(12,4);not null;default:0" json:"working_price_discount"`
	BasePriceDiscount    decimal.Decimal         `gorm:"type:numeric(12,4);not null;default:0" json:"base_price_discount"`
	PriceSource          PriceSource             `gorm:"type:varchar(16);not null" json:"price_source"`
	EstimatedConsumption int64                   `gorm:"not null" json:"estimated_consumption"`
	DesiredStartDate     *time.Time              `json:"desired_start_date,omitempty"`
	IBAN                 string                  `gorm:"column:iban" json:"iban"`
	SepaMandate          bool                    `gorm:"not null" json:"sepa_mandate"`
	VerificationStatus   VerificationStatus      `gorm:"type:varchar(16);not null" json:"verification_status"`
	Status               DraftStatus             `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt            time.Time               `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time               `gorm:"not null" json:"updated_at"`
}

func (ContractDraft) TableName() string { return "contract_drafts" }

// MaLoDraft is the market location captured with a draft. One per draft.
type MaLoDraft struct {
	ID                  snowflake.ID       `gorm:"primaryKey" json:"id"`
	ContractDraftID     snowflake.ID       `gorm:"not null;uniqueIndex" json:"contract_draft_id"`
	ContractID          string             `gorm:"not null;index" json:"contract_id"`
	MaLoID              string             `gorm:"column:malo_id" json:"malo_id"`
	HasOwnMsb           bool               `gorm:"not null" json:"has_own_msb"`
	MeterNumber         string             `json:"meter_number"`
	PreviousProviderID  string             `json:"previous_provider_id"`
	PreviousConsumption int64              `json:"previous_consumption"`
	DraftStatus         VerificationStatus `gorm:"type:varchar(16);not null" json:"draft_status"`
	ScoreAccepted       *bool              `json:"score_accepted,omitempty"`
	ManualPayload       datatypes.JSONMap  `gorm:"type:json" json:"manual_payload,omitempty"`
	CreatedAt           time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time          `gorm:"not null" json:"updated_at"`
}

func (MaLoDraft) TableName() string { return "malo_drafts" }

// Contract is the active supply contract created on activation.
type Contract struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	ContractID      string          `gorm:"not null;uniqueIndex" json:"contract_id"`
	ContractDraftID snowflake.ID    `gorm:"not null;uniqueIndex" json:"contract_draft_id"`
	CustomerID      snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	CampaignID      snowflake.ID    `gorm:"not null" json:"campaign_id"`
	SnapshotID      *snowflake.ID   `json:"snapshot_id,omitempty"`
	VoucherID       *snowflake.ID   `json:"voucher_id,omitempty"`
	WorkingPrice    decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"working_price"`
	BasePrice       decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"base_price"`
	Status          string          `gorm:"type:varchar(16);not null" json:"status"`
	ActivatedBy     string          `gorm:"not null" json:"activated_by"`
	ActivatedAt     time.Time       `gorm:"not null" json:"activated_at"`
}

func (Contract) TableName() string { return "contracts" }

// FinalMarketLocation is the customer's market location with a running
// supplier change.
type FinalMarketLocation struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	ContractID          string       `gorm:"not null;index" json:"contract_id"`
	CustomerID          snowflake.ID `gorm:"not null;index" json:"customer_id"`
	MaLoID              string       `gorm:"column:malo_id" json:"malo_id"`
	HasOwnMsb           bool         `gorm:"not null" json:"has_own_msb"`
	MeterNumber         string       `json:"meter_number"`
	PreviousProviderID  string       `json:"previous_provider_id"`
	PreviousConsumption int64        `json:"previous_consumption"`
	ChangeProcessStatus string       `gorm:"type:varchar(16);not null" json:"change_process_status"`
	CreatedAt           time.Time    `gorm:"not null" json:"created_at"`
}

func (FinalMarketLocation) TableName() string { return "customer_malos" }

// Models lists every table owned by this package, in dependency order.
func Models() []any {
	return []any{&ContractDraft{}, &MaLoDraft{}, &Contract{}, &FinalMarketLocation{}}
}
