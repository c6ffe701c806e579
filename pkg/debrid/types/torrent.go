package types

// Torrent lifecycle statuses as reported by the provider.
const (
	StatusMagnetError           = "magnet_error"
	StatusMagnetConversion      = "magnet_conversion"
	StatusWaitingFilesSelection = "waiting_files_selection"
	StatusQueued                = "queued"
	StatusDownloading           = "downloading"
	StatusDownloaded            = "downloaded"
	StatusError                 = "error"
	StatusVirus                 = "virus"
	StatusDead                  = "dead"
)

// IsTerminalFailure reports whether a torrent can never complete. A handle
// in one of these states is deleted and skipped, never selected or linked.
func IsTerminalFailure(status string) bool {
	switch status {
	case StatusMagnetError, StatusError, StatusVirus, StatusDead:
		return true
	}
	return false
}

type Torrent struct {
	Id               string   `json:"id"`
	InfoHash         string   `json:"info_hash"`
	Name             string   `json:"name"`
	Filename         string   `json:"filename"`
	OriginalFilename string   `json:"original_filename"`
	Bytes            int64    `json:"bytes"`
	Progress         float64  `json:"progress"`
	Speed            int64    `json:"speed"`
	Seeders          int      `json:"seeders"`
	Status           string   `json:"status"`
	Added            string   `json:"added"`
	Files            []File   `json:"files"`
	Links            []string `json:"links"`
	Debrid           string   `json:"debrid"`
}

// SelectedCount returns the number of files the provider reports as
// previously selected.
func (t *Torrent) SelectedCount() int {
	n := 0
	for _, f := range t.Files {
		if f.Selected {
			n++
		}
	}
	return n
}

type File struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Link     string `json:"link"`
	Selected bool   `json:"selected"`
}

// DownloadLink is an unrestricted direct-download URL created from one of
// a torrent's hoster links.
type DownloadLink struct {
	Id       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Filesize int64  `json:"filesize"`
	Link     string `json:"link"`
	Download string `json:"download"`
}

// StreamLink is the value handed back to the caller: a playable URL with
// enough metadata to present it.
type StreamLink struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

type Account struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Type     string `json:"type"`
	Premium  int    `json:"premium"`
	Points   int    `json:"points"`
}
