package margin

import (
	"github.com/enfinitus/onboarding/internal/margin/repository"
	"github.com/enfinitus/onboarding/internal/margin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("margin.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
