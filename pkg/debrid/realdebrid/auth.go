package realdebrid

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	gourl "net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sirrobot01/streamgate/pkg/debrid/types"
)

// Device-code OAuth flow. A configured token is either a direct private
// API token or a base64 "client_id:client_secret:code" bundle exchanged
// for an access token at startup.

const (
	OAuthURL           = "https://api.real-debrid.com/oauth/v2"
	OpenSourceClientID = "X245A4XAIBGVM"
	deviceGrantType    = "http://oauth.net/grant_type/device/1.0"
)

type TokenData struct {
	PrivateToken string
	ClientID     string
	ClientSecret string
	Code         string
}

// EncodeTokenData packs OAuth credentials into the storable token format.
func EncodeTokenData(clientID, clientSecret, code string) string {
	token := fmt.Sprintf("%s:%s:%s", clientID, clientSecret, code)
	return base64.StdEncoding.EncodeToString([]byte(token))
}

// DecodeToken unpacks a stored token. Anything that does not decode into
// three colon-separated parts is treated as a private API token.
func DecodeToken(token string) TokenData {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return TokenData{PrivateToken: token}
	}
	parts := strings.Split(string(decoded), ":")
	if len(parts) != 3 {
		return TokenData{PrivateToken: token}
	}
	return TokenData{
		ClientID:     parts[0],
		ClientSecret: parts[1],
		Code:         parts[2],
	}
}

// RefreshAccessToken swaps an OAuth token bundle for a fresh bearer token
// and installs it on the client. Private tokens are used as-is.
func (r *RealDebrid) RefreshAccessToken(ctx context.Context) error {
	td := DecodeToken(r.APIKey)
	if td.PrivateToken != "" {
		return nil
	}
	tokenInfo, err := r.GetToken(ctx, td.ClientID, td.ClientSecret, td.Code)
	if err != nil {
		return err
	}
	r.client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", tokenInfo.AccessToken))
	return nil
}

func (r *RealDebrid) GetDeviceCode(ctx context.Context) (*DeviceCodeSchema, error) {
	url := fmt.Sprintf("%s/device/code?client_id=%s&new_credentials=yes", OAuthURL, OpenSourceClientID)
	resp, err := r.call(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}
	var data DeviceCodeSchema
	if err = json.Unmarshal(resp, &data); err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to parse device code: %v", err), "api_error.mp4")
	}
	return &data, nil
}

func (r *RealDebrid) GetToken(ctx context.Context, clientID, clientSecret, deviceCode string) (*TokenSchema, error) {
	url := fmt.Sprintf("%s/token", OAuthURL)
	payload := gourl.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"code":          {deviceCode},
		"grant_type":    {deviceGrantType},
	}
	resp, err := r.call(ctx, http.MethodPost, url, strings.NewReader(payload.Encode()), false)
	if err != nil {
		return nil, err
	}
	var data TokenSchema
	if err = json.Unmarshal(resp, &data); err != nil {
		return nil, types.NewProviderError(types.ApiError, fmt.Sprintf("Failed to parse token: %v", err), "api_error.mp4")
	}
	return &data, nil
}

// Authorize polls the device credentials endpoint. Until the user enters
// the device code the endpoint fails, which is expected; once credentials
// are issued they are exchanged for a refresh token and packed into the
// storable format.
func (r *RealDebrid) Authorize(ctx context.Context, deviceCode string) (string, error) {
	url := fmt.Sprintf("%s/device/credentials?client_id=%s&code=%s", OAuthURL, OpenSourceClientID, deviceCode)
	resp, err := r.call(ctx, http.MethodGet, url, nil, true)
	if err != nil {
		return "", err
	}
	var creds DeviceCredentialsSchema
	if err = json.Unmarshal(resp, &creds); err != nil || creds.ClientSecret == "" {
		return "", types.NewProviderError(types.ApiError, "Authorization pending", "auth_error.mp4")
	}

	tokenInfo, err := r.GetToken(ctx, creds.ClientID, creds.ClientSecret, deviceCode)
	if err != nil {
		return "", err
	}
	if tokenInfo.AccessToken == "" {
		return "", types.NewProviderError(types.InvalidToken, "No access token issued", "auth_error.mp4")
	}
	return EncodeTokenData(creds.ClientID, creds.ClientSecret, tokenInfo.RefreshToken), nil
}
