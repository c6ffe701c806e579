package utils

import (
	"fmt"
	"regexp"
)

var (
	VIDEOMATCH  = "(?i)(\\.)(webm|m4v|3gp|nsv|ty|strm|rm|rmvb|m3u|ifo|mov|qt|divx|xvid|bivx|nrg|pva|wmv|asf|asx|ogm|ogv|m2v|avi|bin|dat|dvr-ms|mpg|mpeg|mp4|avc|vp3|svq3|nuv|viv|dv|fli|flv|wpl|img|iso|vob|mkv|mk3d|ts|wtv|m2ts)$"
	SAMPLEMATCH = `(?i)(^|[\\/]|\s|[._-])(sample|trailer|thumb|special|extras?)s?(\s|[._-]|$|/)`
)

func RegexMatch(regex string, value string) bool {
	re := regexp.MustCompile(regex)
	return re.MatchString(value)
}

func IsVideoFile(path string) bool {
	return RegexMatch(VIDEOMATCH, path)
}

func IsSampleFile(path string) bool {
	return RegexMatch(SAMPLEMATCH, path)
}

func RemoveExtension(value string) string {
	re := regexp.MustCompile(VIDEOMATCH)

	// Find the last index of the matched extension
	loc := re.FindStringIndex(value)
	if loc != nil {
		return value[:loc[0]]
	}
	return value
}

// MatchesEpisode reports whether a filename looks like the requested
// season/episode. Release names are messy, so a few common patterns are
// tried: S01E02, 1x02 and a bare E02.
func MatchesEpisode(name string, season, episode int) bool {
	if episode == 0 {
		return false
	}
	patterns := make([]string, 0, 3)
	if season > 0 {
		patterns = append(patterns,
			fmt.Sprintf(`(?i)s0?%de0?%d(\D|$)`, season, episode),
			fmt.Sprintf(`(?i)(\D|^)%dx0?%d(\D|$)`, season, episode),
		)
	}
	patterns = append(patterns, fmt.Sprintf(`(?i)(\D|^)e0?%d(\D|$)`, episode))

	for _, p := range patterns {
		if RegexMatch(p, name) {
			return true
		}
	}
	return false
}
