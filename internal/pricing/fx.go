package pricing

import (
	"github.com/enfinitus/onboarding/internal/pricing/repository"
	"github.com/enfinitus/onboarding/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewSnapshotStore),
)
