package activation

import (
	"github.com/enfinitus/onboarding/internal/activation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activation.service",
	fx.Provide(service.New),
)
