package realdebrid

import (
	"fmt"

	"github.com/sirrobot01/streamgate/pkg/debrid/types"
	"github.com/valyala/fastjson"
)

type errorMapping struct {
	kind    types.ErrorKind
	message string
	hint    string
}

// errorTable maps Real-Debrid error codes to normalized failures. Hint
// codes name the placeholder asset shown to the viewer in place of a
// stream. The table must stay exhaustive over the provider's documented
// codes; anything new falls through to UnknownError.
var errorTable = map[int]errorMapping{
	-1: {types.ApiError, "Internal error", "api_error.mp4"},
	1:  {types.ApiError, "Missing parameter", "api_error.mp4"},
	2:  {types.ApiError, "Bad parameter value", "api_error.mp4"},
	3:  {types.ApiError, "Unknown method", "api_error.mp4"},
	4:  {types.ApiError, "Method not allowed", "api_error.mp4"},
	5:  {types.RateLimited, "Slow down", "too_many_requests.mp4"},
	6:  {types.ApiError, "Resource unreachable", "api_error.mp4"},
	7:  {types.ApiError, "Resource not found", "file_error.mp4"},
	8:  {types.InvalidToken, "Bad token (expired, invalid)", "invalid_token.mp4"},
	9:  {types.InvalidToken, "Permission denied", "invalid_token.mp4"},
	10: {types.InvalidToken, "Two-factor authentication needed", "auth_error.mp4"},
	11: {types.InvalidToken, "Two-factor authentication pending", "auth_error.mp4"},
	12: {types.InvalidToken, "Invalid login", "auth_error.mp4"},
	13: {types.InvalidToken, "Invalid password", "auth_error.mp4"},
	14: {types.InvalidToken, "Account locked", "account_error.mp4"},
	15: {types.InvalidToken, "Account not activated", "account_error.mp4"},
	16: {types.ApiError, "Unsupported hoster", "hoster_error.mp4"},
	17: {types.ApiError, "Hoster in maintenance", "hoster_error.mp4"},
	18: {types.ApiError, "Hoster limit reached", "hoster_error.mp4"},
	19: {types.ApiError, "Hoster temporarily unavailable", "hoster_error.mp4"},
	20: {types.ApiError, "Hoster not available for free users", "hoster_error.mp4"},
	21: {types.TorrentLimitReached, "Too many active downloads", "torrent_limit.mp4"},
	22: {types.ApiError, "IP Address not allowed", "ip_not_allowed.mp4"},
	23: {types.TrafficExhausted, "Traffic exhausted", "traffic_error.mp4"},
	24: {types.ApiError, "File unavailable", "file_error.mp4"},
	25: {types.ServiceDown, "Service unavailable", "service_error.mp4"},
	26: {types.TransferError, "Upload too big", "upload_error.mp4"},
	27: {types.TransferError, "Upload error", "upload_error.mp4"},
	28: {types.ApiError, "File not allowed", "file_error.mp4"},
	29: {types.TransferError, "Torrent too big", "torrent_error.mp4"},
	30: {types.TransferError, "Torrent file invalid", "transfer_error.mp4"},
	31: {types.ApiError, "Action already done", "action_error.mp4"},
	32: {types.ApiError, "Image resolution error", "image_error.mp4"},
	33: {types.TransferError, "Torrent already active", "torrent_error.mp4"},
	34: {types.RateLimited, "Too many requests", "too_many_requests.mp4"},
	35: {types.ApiError, "Infringing file", "content_infringing.mp4"},
	36: {types.RateLimited, "Fair Usage Limit", "too_many_requests.mp4"},
	37: {types.ApiError, "Disabled endpoint", "api_error.mp4"},
}

// classifyCode maps a provider error code to a normalized failure.
func classifyCode(code int, rawMessage string) *types.ProviderError {
	if m, ok := errorTable[code]; ok {
		return types.NewProviderError(m.kind, m.message, m.hint)
	}
	return types.NewProviderError(
		types.UnknownError,
		fmt.Sprintf("Unknown error: %s (code: %d)", rawMessage, code),
		"api_error.mp4",
	)
}

// classifyBody inspects a JSON error payload for a provider error code.
// Returns nil when the body carries no error_code field.
func classifyBody(body []byte) *types.ProviderError {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil
	}
	if !v.Exists("error_code") {
		return nil
	}
	code := v.GetInt("error_code")
	message := string(v.GetStringBytes("error"))
	if message == "" {
		message = "Unknown error"
	}
	return classifyCode(code, message)
}
