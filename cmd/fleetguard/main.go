package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/clock"
	"github.com/haulmatic/fleetguard/internal/config"
	"github.com/haulmatic/fleetguard/internal/migration"
	"github.com/haulmatic/fleetguard/internal/scheduler"
	"github.com/haulmatic/fleetguard/internal/server"
	"github.com/haulmatic/fleetguard/pkg/db"
	"github.com/haulmatic/fleetguard/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		fx.Provide(config.NewReminderConfigHolder),
		migration.Module,
		server.Module,
		scheduler.Module,
	)

	app.Run()
}

func newSnowflakeNode() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
