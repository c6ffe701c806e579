package types

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/sirrobot01/streamgate/internal/utils"
)

// Client is the provider capability set the shared pipeline drives. The
// resolver owns the control flow; implementations own status mapping, error
// classification and file selection.
type Client interface {
	GetName() string
	GetLogger() zerolog.Logger

	SubmitMagnet(ctx context.Context, magnet *utils.Magnet) (*Torrent, error)
	AddTorrentFile(ctx context.Context, data []byte) (*Torrent, error)
	GetTorrentInfo(ctx context.Context, torrentId string) (*Torrent, error)
	GetTorrents(ctx context.Context) ([]*Torrent, error)
	SelectFiles(ctx context.Context, torrentId string, fileIds []string) error
	UnrestrictLink(ctx context.Context, link string) (*DownloadLink, error)
	DeleteTorrent(ctx context.Context, torrentId string) error
	GetUser(ctx context.Context) (*Account, error)

	// SelectFileIndex picks exactly one file for the requested episode.
	SelectFileIndex(t *Torrent, season, episode int) (int, error)

	// GetDownloadingStatuses lists the intermediate statuses that are
	// acceptable while waiting for StatusDownloaded.
	GetDownloadingStatuses() []string

	// Close releases the underlying network session.
	Close()
}
