package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	campaigndomain "github.com/enfinitus/onboarding/internal/campaign/domain"
	margindomain "github.com/enfinitus/onboarding/internal/margin/domain"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	voucherdomain "github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultFunnelID   = "enfinitus-website"
	WelcomeVoucher    = "WELCOME10"
	welcomeStartDate  = "2024-01-01"
	welcomeEndDate    = "2030-12-31"
	defaultSeedNodeID = 1
)

type campaignSeed struct {
	key          string
	name         string
	tariffType   tariffdomain.TariffType
	workingPrice string
	basePrice    string
}

var campaigns = []campaignSeed{
	{"fix-12", "Enfinitus Fix 12", tariffdomain.TariffStandard, "33.90", "13.50"},
	{"green-12", "Enfinitus Green 12", tariffdomain.TariffGreen, "35.20", "14.50"},
	{"dynamic", "Enfinitus Dynamic", tariffdomain.TariffDynamic, "29.90", "9.90"},
}

var margins = map[tariffdomain.TariffType][2]string{
	tariffdomain.TariffStandard: {"1.20", "1.00"},
	tariffdomain.TariffGreen:    {"1.50", "1.00"},
	tariffdomain.TariffDynamic:  {"0.80", "0.50"},
}

// EnsureReferenceData seeds the published campaigns, the welcome voucher and
// the default funnel margins. Existing rows are left untouched.
func EnsureReferenceData(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(defaultSeedNodeID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCampaignsTx(ctx, tx, node, now); err != nil {
			return err
		}
		if err := ensureWelcomeVoucherTx(ctx, tx, node, now); err != nil {
			return err
		}
		return ensureMarginsTx(ctx, tx, node, now)
	})
}

func ensureCampaignsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) error {
	for _, c := range campaigns {
		row := campaigndomain.Campaign{
			ID:           node.Generate(),
			Key:          c.key,
			Name:         c.name,
			TariffType:   c.tariffType,
			WorkingPrice: decimal.RequireFromString(c.workingPrice),
			BasePrice:    decimal.RequireFromString(c.basePrice),
			Published:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
			Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureWelcomeVoucherTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) error {
	var existing voucherdomain.Voucher
	err := tx.WithContext(ctx).Where("voucher_code = ?", WelcomeVoucher).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	start, _ := time.Parse(time.DateOnly, welcomeStartDate)
	end, _ := time.Parse(time.DateOnly, welcomeEndDate)
	voucher := voucherdomain.Voucher{
		ID:                   node.Generate(),
		VoucherCode:          WelcomeVoucher,
		StartDate:            start,
		EndDate:              end,
		WorkingPriceDiscount: decimal.Zero,
		BasePriceDiscount:    decimal.Zero,
		DiscountPercent:      decimal.NewFromInt(10),
		CreatedAt:            now,
	}
	return tx.WithContext(ctx).Create(&voucher).Error
}

func ensureMarginsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) error {
	for _, tariffType := range tariffdomain.TariffTypes() {
		values := margins[tariffType]
		row := margindomain.Margin{
			ID:                 node.Generate(),
			FunnelID:           DefaultFunnelID,
			TariffType:         tariffType,
			MarginWorkingPrice: decimal.RequireFromString(values[0]),
			MarginBasePrice:    decimal.RequireFromString(values[1]),
			UpdatedAt:          now,
		}
		err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "funnel_id"}, {Name: "tariff_type"}},
				DoNothing: true,
			}).
			Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}
