package customer

import (
	"github.com/enfinitus/onboarding/internal/customer/repository"
	"github.com/enfinitus/onboarding/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
