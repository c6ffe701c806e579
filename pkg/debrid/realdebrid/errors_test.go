package realdebrid

import (
	"fmt"
	"testing"

	"github.com/sirrobot01/streamgate/pkg/debrid/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTableCoversDocumentedCodes(t *testing.T) {
	for code := 1; code <= 37; code++ {
		pe := classifyCode(code, "msg")
		assert.NotEqual(t, types.UnknownError, pe.Kind, "code %d should be in the table", code)
	}
	pe := classifyCode(-1, "msg")
	assert.Equal(t, types.ApiError, pe.Kind)
}

func TestClassifyCodeKnown(t *testing.T) {
	tests := []struct {
		code int
		kind types.ErrorKind
		hint string
	}{
		{5, types.RateLimited, "too_many_requests.mp4"},
		{8, types.InvalidToken, "invalid_token.mp4"},
		{21, types.TorrentLimitReached, "torrent_limit.mp4"},
		{23, types.TrafficExhausted, "traffic_error.mp4"},
		{25, types.ServiceDown, "service_error.mp4"},
		{30, types.TransferError, "transfer_error.mp4"},
		{34, types.RateLimited, "too_many_requests.mp4"},
		{35, types.ApiError, "content_infringing.mp4"},
	}
	for _, tt := range tests {
		pe := classifyCode(tt.code, "msg")
		assert.Equal(t, tt.kind, pe.Kind, "code %d", tt.code)
		assert.Equal(t, tt.hint, pe.HintCode, "code %d", tt.code)
	}
}

func TestClassifyCodeUnknown(t *testing.T) {
	pe := classifyCode(99, "some new failure")
	assert.Equal(t, types.UnknownError, pe.Kind)
	assert.Equal(t, "Unknown error: some new failure (code: 99)", pe.Message)
	assert.Equal(t, "api_error.mp4", pe.HintCode)
}

func TestClassifyBody(t *testing.T) {
	pe := classifyBody([]byte(`{"error":"bad_token","error_code":8}`))
	require.NotNil(t, pe)
	assert.Equal(t, types.InvalidToken, pe.Kind)

	// No error_code field means no classification
	assert.Nil(t, classifyBody([]byte(`{"id":"abc"}`)))
	assert.Nil(t, classifyBody([]byte(`not json`)))
}

func TestProviderErrorRoundTrip(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", classifyCode(23, "msg"))
	assert.True(t, types.IsKind(err, types.TrafficExhausted))
	assert.False(t, types.IsKind(err, types.RateLimited))
}
