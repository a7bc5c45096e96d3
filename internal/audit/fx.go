package audit

import (
	"github.com/enfinitus/onboarding/internal/audit/repository"
	"github.com/enfinitus/onboarding/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
