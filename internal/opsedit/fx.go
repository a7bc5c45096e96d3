package opsedit

import (
	"github.com/enfinitus/onboarding/internal/opsedit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("opsedit.service",
	fx.Provide(service.New),
)
