package types

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of normalized provider failures. Kinds drive
// the skip-and-continue decision in the stream generator; hint codes are
// presentation-only.
type ErrorKind string

const (
	InvalidToken         ErrorKind = "invalid_token"
	ServiceDown          ErrorKind = "service_down"
	ApiError             ErrorKind = "api_error"
	TransferError        ErrorKind = "transfer_error"
	TorrentNotDownloaded ErrorKind = "torrent_not_downloaded"
	TrafficExhausted     ErrorKind = "traffic_exhausted"
	TorrentLimitReached  ErrorKind = "torrent_limit_reached"
	RateLimited          ErrorKind = "rate_limited"
	UnknownError         ErrorKind = "unknown_error"
)

// ProviderError is a normalized failure from the remote debrid service.
// HintCode names a placeholder asset for downstream presentation and is
// never used for control flow.
type ProviderError struct {
	Kind     ErrorKind
	Message  string
	HintCode string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewProviderError(kind ErrorKind, message, hintCode string) *ProviderError {
	return &ProviderError{
		Kind:     kind,
		Message:  message,
		HintCode: hintCode,
	}
}

// AsProviderError unwraps err into a *ProviderError if it is one.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a ProviderError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	pe, ok := AsProviderError(err)
	return ok && pe.Kind == kind
}
