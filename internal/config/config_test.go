package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"512KB", 512 * 1024},
		{"1.5GB", int64(1.5 * 1024 * 1024 * 1024)},
		{"100", 100},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseSize("big")
	assert.Error(t, err)
}

func TestIsSizeAllowed(t *testing.T) {
	c := &Config{MinFileSize: "10MB", MaxFileSize: "1GB"}
	assert.True(t, c.IsSizeAllowed(100*1024*1024))
	assert.False(t, c.IsSizeAllowed(1024))
	assert.False(t, c.IsSizeAllowed(2*1024*1024*1024))
	// Unknown size passes; the provider may not have reported it yet
	assert.True(t, c.IsSizeAllowed(0))

	unlimited := &Config{}
	assert.True(t, unlimited.IsSizeAllowed(1))
}

func TestIsAllowedFile(t *testing.T) {
	c := &Config{AllowedExt: getDefaultExtensions()}
	assert.True(t, c.IsAllowedFile("movie.mkv"))
	assert.True(t, c.IsAllowedFile("movie.MP4"))
	assert.False(t, c.IsAllowedFile("movie.srt"))
	assert.False(t, c.IsAllowedFile("noext"))
}

func TestUpdateDebridDefaults(t *testing.T) {
	d := updateDebrid(Debrid{Name: "realdebrid"})
	assert.Equal(t, 30, d.MaxPollRetries)
	assert.Equal(t, "5s", d.PollInterval)
	assert.Equal(t, 5*time.Second, d.GetPollInterval())

	d = updateDebrid(Debrid{MaxPollRetries: 2, PollInterval: "250ms"})
	assert.Equal(t, 2, d.MaxPollRetries)
	assert.Equal(t, 250*time.Millisecond, d.GetPollInterval())
}

func TestGetPollIntervalInvalid(t *testing.T) {
	d := Debrid{PollInterval: "soon"}
	assert.Equal(t, 5*time.Second, d.GetPollInterval())
}

func TestValidateConfig(t *testing.T) {
	valid := &Config{Debrids: []Debrid{{Name: "realdebrid", Host: "https://api", APIKey: "k"}}}
	assert.NoError(t, ValidateConfig(valid))

	assert.Error(t, ValidateConfig(&Config{}))
	assert.Error(t, ValidateConfig(&Config{Debrids: []Debrid{{Name: "realdebrid", Host: "https://api"}}}))

	withJackett := &Config{
		Debrids: []Debrid{{Name: "realdebrid", Host: "https://api", APIKey: "k"}},
		Jackett: Jackett{Host: "https://jackett"},
	}
	assert.Error(t, ValidateConfig(withJackett))
	withJackett.Jackett.APIKey = "jk"
	assert.NoError(t, ValidateConfig(withJackett))
}
