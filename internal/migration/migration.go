package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	auditdomain "github.com/enfinitus/onboarding/internal/audit/domain"
	campaigndomain "github.com/enfinitus/onboarding/internal/campaign/domain"
	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
	customerdomain "github.com/enfinitus/onboarding/internal/customer/domain"
	margindomain "github.com/enfinitus/onboarding/internal/margin/domain"
	onboardingdomain "github.com/enfinitus/onboarding/internal/onboarding/domain"
	pricingdomain "github.com/enfinitus/onboarding/internal/pricing/domain"
	verificationdomain "github.com/enfinitus/onboarding/internal/verification/domain"
	voucherdomain "github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

const migrationsDir = "sql"

//go:embed sql/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every table of the service, referenced tables first.
func Models() []any {
	models := []any{
		&customerdomain.Customer{},
		&campaigndomain.Campaign{},
		&voucherdomain.Voucher{},
		&margindomain.Margin{},
		&pricingdomain.Snapshot{},
	}
	models = append(models, contractdomain.Models()...)
	return append(models,
		&auditdomain.ContractEvent{},
		&onboardingdomain.Saga{},
		&verificationdomain.Job{},
	)
}

// AutoMigrate creates the schema from the models. It serves the in-process
// store and the non-postgres dialects.
func AutoMigrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
