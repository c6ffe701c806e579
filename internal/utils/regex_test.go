package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("Movie.2023.1080p.mkv"))
	assert.True(t, IsVideoFile("show/Season 1/episode.mp4"))
	assert.True(t, IsVideoFile("clip.AVI"))
	assert.False(t, IsVideoFile("subs.srt"))
	assert.False(t, IsVideoFile("movie.nfo"))
	assert.False(t, IsVideoFile("mkv"))
}

func TestIsSampleFile(t *testing.T) {
	assert.True(t, IsSampleFile("Movie.2023/sample.mkv"))
	assert.True(t, IsSampleFile("Movie.Sample.mkv"))
	assert.True(t, IsSampleFile("trailer.mp4"))
	assert.False(t, IsSampleFile("Movie.2023.1080p.mkv"))
	// "sample" embedded in a word should not match
	assert.False(t, IsSampleFile("resampled.mkv"))
}

func TestRemoveExtension(t *testing.T) {
	assert.Equal(t, "Movie.2023.1080p", RemoveExtension("Movie.2023.1080p.mkv"))
	assert.Equal(t, "no-extension", RemoveExtension("no-extension"))
}

func TestMatchesEpisode(t *testing.T) {
	tests := []struct {
		name    string
		season  int
		episode int
		want    bool
	}{
		{"Show.S01E02.1080p.mkv", 1, 2, true},
		{"Show.s1e2.mkv", 1, 2, true},
		{"Show.1x02.mkv", 1, 2, true},
		{"Show.E02.mkv", 0, 2, true},
		{"Show.S01E03.mkv", 1, 2, false},
		{"Show.S02E02.mkv", 1, 2, false},
		// episode 2 must not match E20 or E12
		{"Show.S01E20.mkv", 1, 2, false},
		{"Show.S01E12.mkv", 1, 2, false},
		{"Show.S01E02.mkv", 1, 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesEpisode(tt.name, tt.season, tt.episode), tt.name)
	}
}
