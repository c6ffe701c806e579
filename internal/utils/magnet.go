package utils

import (
	"bytes"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

type Magnet struct {
	Name     string
	InfoHash string
	Size     int64
	Link     string
}

// GetMagnetInfo parses a magnet URI into its info-hash and display name.
func GetMagnetInfo(magnetLink string) (*Magnet, error) {
	if magnetLink == "" {
		return nil, fmt.Errorf("empty magnet link")
	}

	magnetURI, err := url.Parse(magnetLink)
	if err != nil {
		return nil, fmt.Errorf("error parsing magnet link")
	}

	query := magnetURI.Query()
	xt := query.Get("xt")
	dn := query.Get("dn")

	// Extract BTIH
	parts := strings.Split(xt, ":")
	btih := ""
	if len(parts) > 2 {
		btih = parts[2]
	}
	btih, err = processInfoHash(btih)
	if err != nil {
		return nil, err
	}
	magnet := &Magnet{
		InfoHash: btih,
		Name:     dn,
		Size:     0,
		Link:     magnetLink,
	}
	return magnet, nil
}

// ConstructMagnet builds a bare magnet URI from a hex info-hash.
func ConstructMagnet(infoHash string) (*Magnet, error) {
	hash, err := processInfoHash(infoHash)
	if err != nil {
		return nil, err
	}
	return &Magnet{
		InfoHash: hash,
		Link:     fmt.Sprintf("magnet:?xt=urn:btih:%s", hash),
	}, nil
}

// MagnetFromTorrentBytes reads .torrent file contents into a Magnet.
func MagnetFromTorrentBytes(data []byte) (*Magnet, error) {
	mi, err := metainfo.Load(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	hash := mi.HashInfoBytes()
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, err
	}
	return &Magnet{
		InfoHash: hash.HexString(),
		Name:     info.Name,
		Size:     info.Length,
		Link:     mi.Magnet(&hash, &info).String(),
	}, nil
}

func ExtractInfoHash(magnetDesc string) string {
	const prefix = "xt=urn:btih:"
	start := strings.Index(magnetDesc, prefix)
	if start == -1 {
		return ""
	}
	hash := ""
	start += len(prefix)
	end := strings.IndexAny(magnetDesc[start:], "&#")
	if end == -1 {
		hash = magnetDesc[start:]
	} else {
		hash = magnetDesc[start : start+end]
	}
	hash, _ = processInfoHash(hash) // Convert to hex if needed
	return hash
}

func processInfoHash(input string) (string, error) {
	// Regular expression for a valid 40-character hex infohash
	hexRegex := regexp.MustCompile("^[0-9a-fA-F]{40}$")

	// If it's already a valid hex infohash, return it as is
	if hexRegex.MatchString(input) {
		return strings.ToLower(input), nil
	}

	// If it's 32 characters long, it might be Base32 encoded
	if len(input) == 32 {
		input = strings.ToUpper(strings.TrimRight(input, "="))

		decoded, err := base32.StdEncoding.DecodeString(input)
		if err == nil && len(decoded) == 20 {
			return hex.EncodeToString(decoded), nil
		}
	}

	return "", fmt.Errorf("invalid infohash: %s", input)
}
