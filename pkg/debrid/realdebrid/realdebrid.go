package realdebrid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	gourl "net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sirrobot01/streamgate/internal/config"
	"github.com/sirrobot01/streamgate/internal/logger"
	"github.com/sirrobot01/streamgate/internal/request"
	"github.com/sirrobot01/streamgate/internal/utils"
	"github.com/sirrobot01/streamgate/pkg/debrid/types"
)

const requestTimeout = 15 * time.Second

type RealDebrid struct {
	Name   string
	Host   string `json:"host"`
	APIKey string
	client *request.Client
	logger zerolog.Logger
}

func (r *RealDebrid) GetName() string {
	return r.Name
}

func (r *RealDebrid) GetLogger() zerolog.Logger {
	return r.logger
}

// call performs one API request. Non-2xx responses are normalized into
// ProviderErrors; when expectFailure is set the raw body is handed back
// instead so the caller can inspect the error payload itself.
func (r *RealDebrid) call(ctx context.Context, method, url string, body io.Reader, expectFailure bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Request error: %v", err), "api_error.mp4")
	}
	if body != nil && (method == http.MethodPost || method == http.MethodPut) {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, types.NewProviderError(types.TorrentNotDownloaded, "Request timed out", "torrent_not_downloaded.mp4")
		}
		return nil, types.NewProviderError(types.ServiceDown, "Failed to connect to debrid service", "debrid_service_down_error.mp4")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Request error: %v", err), "api_error.mp4")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	if expectFailure {
		return respBody, nil
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if pe := classifyBody(respBody); pe != nil {
			return nil, pe
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, types.NewProviderError(types.InvalidToken, "Invalid token", "invalid_token.mp4")
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, types.NewProviderError(types.ServiceDown, "Debrid service is down", "debrid_service_down_error.mp4")
	}
	return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("API Error %s", string(respBody)), "api_error.mp4")
}

func (r *RealDebrid) SubmitMagnet(ctx context.Context, magnet *utils.Magnet) (*types.Torrent, error) {
	url := fmt.Sprintf("%s/torrents/addMagnet", r.Host)
	payload := gourl.Values{
		"magnet": {magnet.Link},
	}
	resp, err := r.call(ctx, http.MethodPost, url, strings.NewReader(payload.Encode()), false)
	if err != nil {
		return nil, err
	}
	var data AddMagnetSchema
	if err = json.Unmarshal(resp, &data); err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to parse response: %v", err), "api_error.mp4")
	}
	r.logger.Debug().Msgf("Torrent %s added with id %s", magnet.InfoHash, data.Id)
	return &types.Torrent{
		Id:       data.Id,
		InfoHash: magnet.InfoHash,
		Name:     magnet.Name,
		Debrid:   r.Name,
	}, nil
}

func (r *RealDebrid) AddTorrentFile(ctx context.Context, data []byte) (*types.Torrent, error) {
	magnet, err := utils.MagnetFromTorrentBytes(data)
	if err != nil {
		return nil, types.NewProviderError(types.TransferError, "Torrent file invalid", "transfer_error.mp4")
	}
	url := fmt.Sprintf("%s/torrents/addTorrent", r.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Request error: %v", err), "api_error.mp4")
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, types.NewProviderError(types.ServiceDown, "Failed to connect to debrid service", "debrid_service_down_error.mp4")
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Request error: %v", err), "api_error.mp4")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if pe := classifyBody(respBody); pe != nil {
			return nil, pe
		}
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("API Error %s", string(respBody)), "api_error.mp4")
	}
	var schema AddMagnetSchema
	if err = json.Unmarshal(respBody, &schema); err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to parse response: %v", err), "api_error.mp4")
	}
	return &types.Torrent{
		Id:       schema.Id,
		InfoHash: magnet.InfoHash,
		Name:     magnet.Name,
		Debrid:   r.Name,
	}, nil
}

func (r *RealDebrid) GetTorrentInfo(ctx context.Context, torrentId string) (*types.Torrent, error) {
	url := fmt.Sprintf("%s/torrents/info/%s", r.Host, torrentId)
	resp, err := r.call(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}
	var data TorrentInfo
	if err = json.Unmarshal(resp, &data); err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to parse torrent info: %v", err), "api_error.mp4")
	}
	return r.toTorrent(data), nil
}

func (r *RealDebrid) toTorrent(data TorrentInfo) *types.Torrent {
	t := &types.Torrent{
		Id:               data.Id,
		InfoHash:         strings.ToLower(data.Hash),
		Name:             data.Filename,
		Filename:         data.Filename,
		OriginalFilename: data.OriginalFilename,
		Bytes:            data.Bytes,
		Progress:         data.Progress,
		Speed:            data.Speed,
		Seeders:          data.Seeders,
		Status:           data.Status,
		Added:            data.Added,
		Links:            data.Links,
		Debrid:           r.Name,
	}
	files := make([]types.File, 0, len(data.Files))
	idx := 0
	for _, f := range data.Files {
		file := types.File{
			Id:       strconv.Itoa(f.ID),
			Name:     filepath.Base(f.Path),
			Path:     f.Path,
			Size:     f.Bytes,
			Selected: f.Selected == 1,
		}
		// Download links line up with selected files in listed order
		if file.Selected {
			if idx < len(data.Links) {
				file.Link = data.Links[idx]
			}
			idx++
		}
		files = append(files, file)
	}
	t.Files = files
	return t
}

func (r *RealDebrid) getTorrents(ctx context.Context, offset int, limit int) ([]*types.Torrent, error) {
	url := fmt.Sprintf("%s/torrents?limit=%d", r.Host, limit)
	if offset > 0 {
		url = fmt.Sprintf("%s&offset=%d", url, offset)
	}
	resp, err := r.call(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}
	var data []TorrentsResponse
	if err = json.Unmarshal(resp, &data); err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to parse torrent list: %v", err), "api_error.mp4")
	}
	torrents := make([]*types.Torrent, 0, len(data))
	for _, t := range data {
		torrents = append(torrents, &types.Torrent{
			Id:       t.Id,
			InfoHash: strings.ToLower(t.Hash),
			Name:     t.Filename,
			Filename: t.Filename,
			Bytes:    t.Bytes,
			Progress: t.Progress,
			Status:   t.Status,
			Added:    t.Added,
			Links:    t.Links,
			Debrid:   r.Name,
		})
	}
	return torrents, nil
}

func (r *RealDebrid) GetTorrents(ctx context.Context) ([]*types.Torrent, error) {
	torrents := make([]*types.Torrent, 0)
	offset := 0
	limit := 1000
	for {
		ts, err := r.getTorrents(ctx, offset, limit)
		if err != nil {
			if len(torrents) > 0 {
				break
			}
			return nil, err
		}
		if len(ts) == 0 {
			break
		}
		torrents = append(torrents, ts...)
		if len(ts) < limit {
			break
		}
		offset = len(torrents)
	}
	return torrents, nil
}

func (r *RealDebrid) SelectFiles(ctx context.Context, torrentId string, fileIds []string) error {
	url := fmt.Sprintf("%s/torrents/selectFiles/%s", r.Host, torrentId)
	payload := gourl.Values{
		"files": {strings.Join(fileIds, ",")},
	}
	_, err := r.call(ctx, http.MethodPost, url, strings.NewReader(payload.Encode()), false)
	return err
}

func (r *RealDebrid) UnrestrictLink(ctx context.Context, link string) (*types.DownloadLink, error) {
	url := fmt.Sprintf("%s/unrestrict/link", r.Host)
	payload := gourl.Values{
		"link": {link},
	}
	resp, err := r.call(ctx, http.MethodPost, url, strings.NewReader(payload.Encode()), true)
	if err != nil {
		return nil, err
	}
	var data UnrestrictResponse
	if err = json.Unmarshal(resp, &data); err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to parse response: %s", string(resp)), "api_error.mp4")
	}
	if data.Download != "" {
		return &types.DownloadLink{
			Id:       data.Id,
			Filename: data.Filename,
			MimeType: data.MimeType,
			Filesize: data.Filesize,
			Link:     data.Link,
			Download: data.Download,
		}, nil
	}
	if pe := classifyBody(resp); pe != nil {
		if pe.Kind == types.TrafficExhausted {
			return nil, types.NewProviderError(types.TrafficExhausted, "Exceed remote traffic limit", "exceed_remote_traffic_limit.mp4")
		}
		return nil, pe
	}
	return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to create download link. response: %s", string(resp)), "api_error.mp4")
}

func (r *RealDebrid) DeleteTorrent(ctx context.Context, torrentId string) error {
	url := fmt.Sprintf("%s/torrents/delete/%s", r.Host, torrentId)
	_, err := r.call(ctx, http.MethodDelete, url, nil, false)
	if err == nil {
		r.logger.Debug().Msgf("Torrent %s deleted", torrentId)
	}
	return err
}

func (r *RealDebrid) GetUser(ctx context.Context) (*types.Account, error) {
	url := fmt.Sprintf("%s/user", r.Host)
	resp, err := r.call(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}
	var data UserSchema
	if err = json.Unmarshal(resp, &data); err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to parse user info: %v", err), "api_error.mp4")
	}
	return &types.Account{
		Id:       data.Id,
		Username: data.Username,
		Email:    data.Email,
		Type:     data.Type,
		Premium:  data.Premium,
		Points:   data.Points,
	}, nil
}

// ActiveCount returns the number of currently active torrents on the
// account, used to stay clear of the provider's transfer limit.
func (r *RealDebrid) ActiveCount(ctx context.Context) (int, int, error) {
	url := fmt.Sprintf("%s/torrents/activeCount", r.Host)
	resp, err := r.call(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return 0, 0, err
	}
	var data struct {
		Nb    int `json:"nb"`
		Limit int `json:"limit"`
	}
	if err = json.Unmarshal(resp, &data); err != nil {
		return 0, 0, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to parse active count: %v", err), "api_error.mp4")
	}
	return data.Nb, data.Limit, nil
}

func (r *RealDebrid) GetDownloadingStatuses() []string {
	return []string{types.StatusDownloading, types.StatusMagnetConversion, types.StatusQueued}
}

func (r *RealDebrid) Close() {
	r.client.CloseIdleConnections()
}

func New(dc config.Debrid) *RealDebrid {
	rl := request.ParseRateLimit(dc.RateLimit)
	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", dc.APIKey),
	}
	client := request.New(
		request.WithHeaders(headers),
		request.WithRateLimiter(rl),
		request.WithTimeout(requestTimeout),
		request.WithMaxRetries(1),
		request.WithProxy(dc.Proxy),
		request.WithLogger(logger.New(dc.Name)),
	)
	return &RealDebrid{
		Name:   "realdebrid",
		Host:   dc.Host,
		APIKey: dc.APIKey,
		client: client,
		logger: logger.New(dc.Name),
	}
}
