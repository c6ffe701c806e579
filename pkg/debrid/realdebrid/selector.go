package realdebrid

import (
	"github.com/sirrobot01/streamgate/internal/utils"
	"github.com/sirrobot01/streamgate/pkg/debrid/types"
)

// SelectFileIndex picks exactly one file from a torrent listing. A sole
// file wins outright; otherwise episode heuristics are tried against the
// filenames, then the first video file, then the first file in listed
// order. The same input always yields the same index.
func (r *RealDebrid) SelectFileIndex(t *types.Torrent, season, episode int) (int, error) {
	if len(t.Files) == 0 {
		return -1, types.NewProviderError(types.TransferError, "No matching file available for this torrent", "no_matching_file.mp4")
	}
	if len(t.Files) == 1 {
		return 0, nil
	}

	if episode > 0 {
		for i, f := range t.Files {
			if !utils.IsVideoFile(f.Path) {
				continue
			}
			if utils.MatchesEpisode(f.Name, season, episode) {
				return i, nil
			}
		}
	}

	for i, f := range t.Files {
		if utils.IsVideoFile(f.Path) && !utils.IsSampleFile(f.Path) {
			return i, nil
		}
	}

	return 0, nil
}
