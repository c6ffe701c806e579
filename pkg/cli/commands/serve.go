package commands

import (
	"context"
	"flag"

	"github.com/sirrobot01/streamgate/cmd/streamgate"
	"github.com/sirrobot01/streamgate/internal/config"
	"github.com/sirrobot01/streamgate/pkg/cli"
)

func init() {
	cli.Register(cli.Command{
		Name:        "serve",
		Description: "Start the streamgate server",
		Execute:     executeServe,
	})
}

func executeServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "/data", "path to the data folder")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.SetConfigPath(*configPath)
	return streamgate.Start(context.Background())
}
