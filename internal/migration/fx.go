package migration

import (
	"context"

	"github.com/ecoverde/compensa/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, loader *seed.Loader) error {
		if err := RunMigrations(conn); err != nil {
			return err
		}
		return loader.LoadAll(context.Background())
	}),
)
