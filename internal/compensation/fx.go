package compensation

import (
	"github.com/ecoverde/compensa/internal/compensation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("compensation.service",
	fx.Provide(service.NewService),
)
