package realdebrid

import (
	"testing"

	"github.com/sirrobot01/streamgate/pkg/debrid/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectorTorrent(files ...types.File) *types.Torrent {
	return &types.Torrent{Id: "t1", Files: files}
}

func TestSelectFileIndexEmpty(t *testing.T) {
	rd := newTestClient("")
	_, err := rd.SelectFileIndex(selectorTorrent(), 0, 0)
	pe, ok := types.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, types.TransferError, pe.Kind)
	assert.Equal(t, "no_matching_file.mp4", pe.HintCode)
}

func TestSelectFileIndexSingleFile(t *testing.T) {
	rd := newTestClient("")
	idx, err := rd.SelectFileIndex(selectorTorrent(
		types.File{Id: "1", Name: "readme.txt", Path: "/t/readme.txt"},
	), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestSelectFileIndexEpisode(t *testing.T) {
	rd := newTestClient("")
	torrent := selectorTorrent(
		types.File{Id: "1", Name: "Show.S01E01.mkv", Path: "/t/Show.S01E01.mkv"},
		types.File{Id: "2", Name: "Show.S01E02.mkv", Path: "/t/Show.S01E02.mkv"},
		types.File{Id: "3", Name: "Show.S01E03.mkv", Path: "/t/Show.S01E03.mkv"},
	)
	idx, err := rd.SelectFileIndex(torrent, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestSelectFileIndexSkipsSamplesAndNonVideo(t *testing.T) {
	rd := newTestClient("")
	torrent := selectorTorrent(
		types.File{Id: "1", Name: "info.nfo", Path: "/t/info.nfo"},
		types.File{Id: "2", Name: "sample.mkv", Path: "/t/sample.mkv"},
		types.File{Id: "3", Name: "Movie.2023.mkv", Path: "/t/Movie.2023.mkv"},
	)
	idx, err := rd.SelectFileIndex(torrent, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestSelectFileIndexFallsBackToFirst(t *testing.T) {
	rd := newTestClient("")
	torrent := selectorTorrent(
		types.File{Id: "1", Name: "a.txt", Path: "/t/a.txt"},
		types.File{Id: "2", Name: "b.txt", Path: "/t/b.txt"},
	)
	idx, err := rd.SelectFileIndex(torrent, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestSelectFileIndexDeterministic(t *testing.T) {
	rd := newTestClient("")
	torrent := selectorTorrent(
		types.File{Id: "1", Name: "Show.S01E01.mkv", Path: "/t/Show.S01E01.mkv"},
		types.File{Id: "2", Name: "Show.S01E02.mkv", Path: "/t/Show.S01E02.mkv"},
	)
	first, err := rd.SelectFileIndex(torrent, 1, 2)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		idx, err := rd.SelectFileIndex(torrent, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, first, idx)
	}
}
