package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirrobot01/streamgate/internal/utils"
	"github.com/sirrobot01/streamgate/pkg/debrid/types"
)

// Resolver drives a single torrent through the provider pipeline:
// add -> wait for selection -> select file -> wait for download ->
// unrestrict. Failures come back as ProviderErrors; the caller decides
// whether to skip or abort.
type Resolver struct {
	client     types.Client
	maxRetries int
	interval   time.Duration
	logger     zerolog.Logger
}

func New(client types.Client, maxRetries int, interval time.Duration) *Resolver {
	if maxRetries <= 0 {
		maxRetries = 30
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Resolver{
		client:     client,
		maxRetries: maxRetries,
		interval:   interval,
		logger:     client.GetLogger(),
	}
}

func (r *Resolver) Client() types.Client {
	return r.client
}

// Resolve turns a magnet link or bare info-hash into a playable stream
// link. A handle already registered for the hash is reused when its
// selection state is still consistent; otherwise it is deleted and the
// torrent re-registered from scratch.
func (r *Resolver) Resolve(ctx context.Context, torrent string, season, episode int) (*types.StreamLink, error) {
	magnet, err := parseTorrent(torrent)
	if err != nil {
		return nil, types.NewProviderError(types.TransferError, fmt.Sprintf("Invalid torrent identifier: %v", err), "transfer_error.mp4")
	}
	submit := func(ctx context.Context) (*types.Torrent, error) {
		return r.client.SubmitMagnet(ctx, magnet)
	}
	return r.resolve(ctx, magnet.InfoHash, submit, season, episode, true)
}

// ResolveFile registers a raw .torrent file instead of a magnet and
// resolves it the same way.
func (r *Resolver) ResolveFile(ctx context.Context, data []byte, season, episode int) (*types.StreamLink, error) {
	magnet, err := utils.MagnetFromTorrentBytes(data)
	if err != nil {
		return nil, types.NewProviderError(types.TransferError, "Torrent file invalid", "transfer_error.mp4")
	}
	submit := func(ctx context.Context) (*types.Torrent, error) {
		return r.client.AddTorrentFile(ctx, data)
	}
	return r.resolve(ctx, magnet.InfoHash, submit, season, episode, true)
}

func (r *Resolver) resolve(ctx context.Context, infoHash string, submit func(context.Context) (*types.Torrent, error), season, episode int, allowRecreate bool) (*types.StreamLink, error) {

	info, err := r.findExisting(ctx, infoHash)
	if err != nil {
		return nil, err
	}

	if info != nil && types.IsTerminalFailure(info.Status) {
		_ = r.client.DeleteTorrent(ctx, info.Id)
		return nil, types.NewProviderError(types.TransferError, fmt.Sprintf("Torrent has failure status %s", info.Status), "transfer_error.mp4")
	}

	// A downloaded handle whose selection no longer lines up with its
	// links is stale provider state; rebuild instead of trusting it.
	if info != nil && info.Status == types.StatusDownloaded {
		if len(info.Links) == 0 || info.SelectedCount() != len(info.Links) {
			_ = r.client.DeleteTorrent(ctx, info.Id)
			info = nil
		}
	}

	if info == nil {
		added, err := submit(ctx)
		if err != nil {
			return nil, err
		}
		if added == nil || added.Id == "" {
			return nil, types.NewProviderError(types.TransferError, "Failed to add torrent: no id in response", "transfer_error.mp4")
		}
		info, err = r.client.GetTorrentInfo(ctx, added.Id)
		if err != nil {
			return nil, err
		}
		if types.IsTerminalFailure(info.Status) {
			_ = r.client.DeleteTorrent(ctx, info.Id)
			return nil, types.NewProviderError(types.TransferError, fmt.Sprintf("Torrent has failure status %s", info.Status), "transfer_error.mp4")
		}
	}

	if info.SelectedCount() == 0 && info.Status != types.StatusDownloaded {
		info, err = r.waitForStatus(ctx, info.Id, types.StatusWaitingFilesSelection)
		if err != nil {
			return nil, err
		}
		idx, err := r.client.SelectFileIndex(info, season, episode)
		if err != nil {
			return nil, err
		}
		if err = r.client.SelectFiles(ctx, info.Id, []string{info.Files[idx].Id}); err != nil {
			return nil, err
		}
	}

	if info.Status != types.StatusDownloaded {
		info, err = r.waitForStatus(ctx, info.Id, types.StatusDownloaded)
		if err != nil {
			return nil, err
		}
	}

	idx, err := r.client.SelectFileIndex(info, season, episode)
	if err != nil {
		return nil, err
	}
	file := info.Files[idx]
	link := linkForFile(info, file.Id)
	if link == "" {
		// The selected file has no matching link; provider state drifted
		// since selection. Rebuild once from scratch.
		_ = r.client.DeleteTorrent(ctx, info.Id)
		if allowRecreate {
			r.logger.Debug().Msgf("Stale selection on %s, re-registering", info.InfoHash)
			return r.resolve(ctx, infoHash, submit, season, episode, false)
		}
		return nil, types.NewProviderError(types.TransferError, "No download link for selected file", "transfer_error.mp4")
	}

	dl, err := r.client.UnrestrictLink(ctx, link)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(dl.MimeType, "video") {
		_ = r.client.DeleteTorrent(ctx, info.Id)
		return nil, types.NewProviderError(types.TorrentNotDownloaded, fmt.Sprintf("Resolved file is not a video: %s", dl.MimeType), "torrent_not_downloaded.mp4")
	}

	name := dl.Filename
	if name == "" {
		name = file.Name
	}
	size := dl.Filesize
	if size == 0 {
		size = file.Size
	}
	return &types.StreamLink{
		Name: name,
		Size: size,
		URL:  dl.Download,
	}, nil
}

// findExisting looks the info-hash up in the account's torrent list and
// returns the full handle info when present.
func (r *Resolver) findExisting(ctx context.Context, infoHash string) (*types.Torrent, error) {
	torrents, err := r.client.GetTorrents(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range torrents {
		if strings.EqualFold(t.InfoHash, infoHash) {
			return r.client.GetTorrentInfo(ctx, t.Id)
		}
	}
	return nil, nil
}

// waitForStatus polls torrent info until the target status is reached.
// Terminal failures and an exhausted retry budget both come back as
// TorrentNotDownloaded. En route to downloaded only the provider's
// in-progress statuses are acceptable; anything else means the handle
// went sideways and another round will not help.
func (r *Resolver) waitForStatus(ctx context.Context, torrentId, target string) (*types.Torrent, error) {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		t, err := r.client.GetTorrentInfo(ctx, torrentId)
		if err != nil {
			return nil, err
		}
		if t.Status == target {
			return t, nil
		}
		if types.IsTerminalFailure(t.Status) {
			_ = r.client.DeleteTorrent(ctx, torrentId)
			return nil, types.NewProviderError(types.TorrentNotDownloaded, fmt.Sprintf("Torrent failed with status %s", t.Status), "torrent_not_downloaded.mp4")
		}
		if target == types.StatusDownloaded && !r.acceptableWhileDownloading(t.Status) {
			return nil, types.NewProviderError(types.TorrentNotDownloaded, fmt.Sprintf("Unexpected torrent status %s", t.Status), "torrent_not_downloaded.mp4")
		}
		if attempt == r.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.interval):
		}
	}
	return nil, types.NewProviderError(types.TorrentNotDownloaded, fmt.Sprintf("Torrent did not reach %s status", target), "torrent_not_downloaded.mp4")
}

func (r *Resolver) acceptableWhileDownloading(status string) bool {
	// Selection can still be reported briefly right after selectFiles
	if status == types.StatusWaitingFilesSelection {
		return true
	}
	for _, s := range r.client.GetDownloadingStatuses() {
		if status == s {
			return true
		}
	}
	return false
}

func linkForFile(t *types.Torrent, fileId string) string {
	idx := 0
	for _, f := range t.Files {
		if !f.Selected {
			continue
		}
		if f.Id == fileId {
			if idx < len(t.Links) {
				return t.Links[idx]
			}
			return ""
		}
		idx++
	}
	return ""
}

func parseTorrent(torrent string) (*utils.Magnet, error) {
	if strings.HasPrefix(torrent, "magnet:") {
		return utils.GetMagnetInfo(torrent)
	}
	return utils.ConstructMagnet(torrent)
}
