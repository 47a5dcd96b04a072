package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/bentoworks/shukin/internal/clock"
	"github.com/bentoworks/shukin/internal/config"
	"github.com/bentoworks/shukin/internal/migration"
	"github.com/bentoworks/shukin/internal/observability"
	"github.com/bentoworks/shukin/internal/server"
	"github.com/bentoworks/shukin/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface; domain modules are registered by server.Module.
		server.Module,
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
