package onboarding

import (
	"github.com/enfinitus/onboarding/internal/onboarding/repository"
	"github.com/enfinitus/onboarding/internal/onboarding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("onboarding.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
