package downloaders

import (
	"context"
	"crypto/tls"
	"net/http"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/rs/zerolog"
	"github.com/sirrobot01/streamgate/internal/logger"
)

// Downloader fetches resolved stream links to local files. Used by the
// fetch command for offline playback.
type Downloader struct {
	client *grab.Client
	dir    string
	logger zerolog.Logger
}

func New(dir string) *Downloader {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		Proxy:           http.ProxyFromEnvironment,
	}
	return &Downloader{
		client: &grab.Client{
			UserAgent: "streamgate",
			HTTPClient: &http.Client{
				Transport: tr,
			},
		},
		dir:    dir,
		logger: logger.New("downloader"),
	}
}

// Fetch downloads url into the configured directory under filename and
// returns the final path. Progress is logged while the transfer runs.
func (d *Downloader) Fetch(ctx context.Context, url, filename string) (string, error) {
	dest := filepath.Join(d.dir, filename)
	req, err := grab.NewRequest(dest, url)
	if err != nil {
		return "", err
	}
	req = req.WithContext(ctx)
	resp := d.client.Do(req)

	t := time.NewTicker(2 * time.Second)
	defer t.Stop()
Loop:
	for {
		select {
		case <-t.C:
			d.logger.Info().Msgf("%s: transferred %d / %d bytes (%.2f%%)",
				resp.Filename,
				resp.BytesComplete(),
				resp.Size(),
				100*resp.Progress())
		case <-resp.Done:
			break Loop
		}
	}
	if err := resp.Err(); err != nil {
		return "", err
	}
	return resp.Filename, nil
}
