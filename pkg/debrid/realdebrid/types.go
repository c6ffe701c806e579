package realdebrid

// Wire schemas for the Real-Debrid REST API.

type AddMagnetSchema struct {
	Id  string `json:"id"`
	Uri string `json:"uri"`
}

type TorrentInfo struct {
	Id               string  `json:"id"`
	Filename         string  `json:"filename"`
	OriginalFilename string  `json:"original_filename"`
	Hash             string  `json:"hash"`
	Bytes            int64   `json:"bytes"`
	OriginalBytes    int64   `json:"original_bytes"`
	Host             string  `json:"host"`
	Split            int     `json:"split"`
	Progress         float64 `json:"progress"`
	Status           string  `json:"status"`
	Added            string  `json:"added"`
	Files            []struct {
		ID       int    `json:"id"`
		Path     string `json:"path"`
		Bytes    int64  `json:"bytes"`
		Selected int    `json:"selected"`
	} `json:"files"`
	Links   []string `json:"links"`
	Ended   string   `json:"ended,omitempty"`
	Speed   int64    `json:"speed,omitempty"`
	Seeders int      `json:"seeders,omitempty"`
}

type TorrentsResponse struct {
	Id       string   `json:"id"`
	Filename string   `json:"filename"`
	Hash     string   `json:"hash"`
	Bytes    int64    `json:"bytes"`
	Status   string   `json:"status"`
	Added    string   `json:"added"`
	Progress float64  `json:"progress"`
	Links    []string `json:"links"`
}

type UnrestrictResponse struct {
	Id         string `json:"id"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mimeType"`
	Filesize   int64  `json:"filesize"`
	Link       string `json:"link"`
	Host       string `json:"host"`
	Chunks     int    `json:"chunks"`
	Download   string `json:"download"`
	Streamable int    `json:"streamable"`
}

type UserSchema struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Points   int    `json:"points"`
	Type     string `json:"type"`
	Premium  int    `json:"premium"`
}

type DeviceCodeSchema struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURL string `json:"verification_url"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type DeviceCredentialsSchema struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type TokenSchema struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
