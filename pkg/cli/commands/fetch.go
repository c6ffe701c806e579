package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirrobot01/streamgate/internal/config"
	"github.com/sirrobot01/streamgate/pkg/cli"
	"github.com/sirrobot01/streamgate/pkg/debrid/engine"
	"github.com/sirrobot01/streamgate/pkg/debrid/resolver"
	"github.com/sirrobot01/streamgate/pkg/downloaders"
)

func init() {
	cli.Register(cli.Command{
		Name:        "fetch",
		Description: "Resolve a magnet through the debrid service and download it",
		Execute:     executeFetch,
	})
}

func executeFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", "/data", "path to the data folder")
	debridName := fs.String("debrid", "", "debrid provider to use")
	season := fs.Int("season", 0, "season number for episode matching")
	episode := fs.Int("episode", 0, "episode number for episode matching")
	dir := fs.String("dir", ".", "download directory")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: fetch [options] <magnet-or-infohash>")
	}

	config.SetConfigPath(*configPath)
	cfg := config.Get()

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	client, err := eng.Client(*debridName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var dc config.Debrid
	for _, d := range cfg.Debrids {
		if d.Name == client.GetName() {
			dc = d
			break
		}
	}
	r := resolver.New(client, dc.MaxPollRetries, dc.GetPollInterval())
	link, err := r.Resolve(ctx, fs.Arg(0), *season, *episode)
	if err != nil {
		return err
	}

	if !cfg.IsAllowedFile(link.Name) {
		return fmt.Errorf("file type not allowed: %s", link.Name)
	}
	if !cfg.IsSizeAllowed(link.Size) {
		return fmt.Errorf("file size outside configured bounds: %d bytes", link.Size)
	}

	fmt.Printf("Resolved %s (%d bytes)\n", link.Name, link.Size)
	path, err := downloaders.New(*dir).Fetch(ctx, link.URL, link.Name)
	if err != nil {
		return err
	}
	fmt.Printf("Saved to %s\n", path)
	return nil
}
