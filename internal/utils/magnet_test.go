package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "08ada5a7a6183aae1e09d831df6748d566095a10"

func TestGetMagnetInfo(t *testing.T) {
	link := "magnet:?xt=urn:btih:" + testHash + "&dn=Sintel&tr=udp%3A%2F%2Ftracker.example.org%3A6969"
	m, err := GetMagnetInfo(link)
	require.NoError(t, err)
	assert.Equal(t, testHash, m.InfoHash)
	assert.Equal(t, "Sintel", m.Name)
	assert.Equal(t, link, m.Link)
}

func TestGetMagnetInfoUppercaseHash(t *testing.T) {
	m, err := GetMagnetInfo("magnet:?xt=urn:btih:08ADA5A7A6183AAE1E09D831DF6748D566095A10")
	require.NoError(t, err)
	assert.Equal(t, testHash, m.InfoHash)
}

func TestGetMagnetInfoInvalid(t *testing.T) {
	_, err := GetMagnetInfo("")
	assert.Error(t, err)

	_, err = GetMagnetInfo("magnet:?xt=urn:btih:nothex")
	assert.Error(t, err)
}

func TestConstructMagnet(t *testing.T) {
	m, err := ConstructMagnet(testHash)
	require.NoError(t, err)
	assert.Equal(t, testHash, m.InfoHash)
	assert.Equal(t, "magnet:?xt=urn:btih:"+testHash, m.Link)
}

func TestExtractInfoHash(t *testing.T) {
	assert.Equal(t, testHash, ExtractInfoHash("magnet:?xt=urn:btih:"+testHash+"&dn=Sintel"))
	assert.Equal(t, "", ExtractInfoHash("not a magnet"))
}
