package commands

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirrobot01/streamgate/pkg/cli"
)

func init() {
	cli.Register(cli.Command{
		Name:        "health",
		Description: "Check the health of the streamgate server",
		Execute:     executeHealth,
	})
}

func executeHealth(args []string) error {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	timeout := fs.Duration("timeout", 3*time.Second, "timeout for health check")
	port := fs.String("port", "8282", "server port")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if envPort := os.Getenv("STREAMGATE_PORT"); envPort != "" {
		*port = envPort
	}

	url := fmt.Sprintf("http://localhost:%s/internal/version", *port)

	client := &http.Client{
		Timeout: *timeout,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	fmt.Println("Health check passed")
	return nil
}
