package rules

import (
	"github.com/ecoverde/compensa/internal/rules/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("rules.repository",
	fx.Provide(repository.NewRepository),
)
