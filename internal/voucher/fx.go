package voucher

import (
	"github.com/enfinitus/onboarding/internal/voucher/repository"
	"github.com/enfinitus/onboarding/internal/voucher/service"
	"go.uber.org/fx"
)

var Module = fx.Module("voucher.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
