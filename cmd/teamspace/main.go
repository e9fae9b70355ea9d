package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamspace/internal/clock"
	"github.com/smallbiznis/teamspace/internal/config"
	"github.com/smallbiznis/teamspace/internal/logger"
	"github.com/smallbiznis/teamspace/internal/migration"
	"github.com/smallbiznis/teamspace/internal/observability"
	"github.com/smallbiznis/teamspace/internal/server"
	"github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	).Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
