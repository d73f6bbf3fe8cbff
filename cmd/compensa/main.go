package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/ecoverde/compensa/internal/compensation"
	"github.com/ecoverde/compensa/internal/config"
	"github.com/ecoverde/compensa/internal/logger"
	"github.com/ecoverde/compensa/internal/metrics"
	"github.com/ecoverde/compensa/internal/migration"
	"github.com/ecoverde/compensa/internal/rules"
	"github.com/ecoverde/compensa/internal/seed"
	"github.com/ecoverde/compensa/internal/server"
	"github.com/ecoverde/compensa/internal/species"
	"github.com/ecoverde/compensa/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		metrics.Module,

		// Rule store and seeding
		rules.Module,
		seed.Module,
		migration.Module,

		// Functional domains
		compensation.Module,
		species.Module,

		// HTTP surface
		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(*server.Server) {}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
