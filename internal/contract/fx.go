package contract

import (
	"github.com/enfinitus/onboarding/internal/contract/repository"
	"github.com/enfinitus/onboarding/internal/contract/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contract.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(service.NewOpsQuery),
)
