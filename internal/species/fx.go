package species

import (
	"github.com/ecoverde/compensa/internal/species/service"
	"go.uber.org/fx"
)

var Module = fx.Module("species.service",
	fx.Provide(service.NewService),
)
