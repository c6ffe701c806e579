package search

// Query describes one torrent lookup. Season/Episode of zero mean a
// plain title search.
type Query struct {
	Title   string
	Season  int
	Episode int
	Limit   int
}

// Result is one deduplicated torrent candidate, ordered best-first.
type Result struct {
	Title    string `json:"title"`
	InfoHash string `json:"info_hash"`
	Magnet   string `json:"magnet"`
	Size     int64  `json:"size"`
	Seeders  int    `json:"seeders"`
	Indexer  string `json:"indexer"`
}
