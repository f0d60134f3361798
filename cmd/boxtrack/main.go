package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/boxtrack/boxtrack/internal/migration"
	"github.com/boxtrack/boxtrack/internal/server"
	"github.com/boxtrack/boxtrack/pkg/db"
	"github.com/boxtrack/boxtrack/pkg/log"
)

func main() {
	app := fx.New(
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
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
