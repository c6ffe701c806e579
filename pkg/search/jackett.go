package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sirrobot01/streamgate/internal/cache"
	"github.com/sirrobot01/streamgate/internal/config"
	"github.com/sirrobot01/streamgate/internal/logger"
	"github.com/sirrobot01/streamgate/internal/request"
	"github.com/sirrobot01/streamgate/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	categoryMovies = "2000"
	categoryTV     = "5000"

	cacheTTL = 30 * time.Minute
)

type jackettResponse struct {
	Results []struct {
		Title     string `json:"Title"`
		Tracker   string `json:"Tracker"`
		MagnetUri string `json:"MagnetUri"`
		Link      string `json:"Link"`
		InfoHash  string `json:"InfoHash"`
		Size      int64  `json:"Size"`
		Seeders   int    `json:"Seeders"`
	} `json:"Results"`
}

// Jackett queries a Jackett instance's aggregate indexer and normalizes
// results to magnet candidates. Results without an inline magnet are
// resolved by following the indexer download redirect.
type Jackett struct {
	host       string
	apiKey     string
	maxResults int
	minSize    int64
	maxSize    int64
	client     *request.Client
	cache      *cache.Cache
	logger     zerolog.Logger
}

func NewJackett(cfg *config.Jackett) *Jackett {
	log := logger.New("jackett")
	root := config.Get()
	return &Jackett{
		host:       strings.TrimSuffix(cfg.Host, "/"),
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		minSize:    root.GetMinFileSize(),
		maxSize:    root.GetMaxFileSize(),
		client: request.New(
			request.WithTimeout(30*time.Second),
			request.WithLogger(log),
			// Download links redirect to the magnet URI; stop there and
			// read it off the Location header instead of following.
			request.WithRedirectPolicy(func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			}),
		),
		cache:  cache.New(config.Get().MaxCacheSize),
		logger: log,
	}
}

// Search runs the query against Jackett, deduplicates by info-hash and
// returns candidates best-first. Results are cached per query string.
func (j *Jackett) Search(ctx context.Context, q Query) ([]Result, error) {
	term := q.Title
	category := categoryMovies
	if q.Season > 0 {
		category = categoryTV
		term = fmt.Sprintf("%s S%02dE%02d", q.Title, q.Season, q.Episode)
	}

	cacheKey := fmt.Sprintf("%s:%s", category, strings.ToLower(term))
	if cached, ok := j.cache.Get(cacheKey); ok {
		var results []Result
		if err := json.Unmarshal([]byte(cached), &results); err == nil {
			return j.limit(results, q.Limit), nil
		}
	}

	raw, err := j.query(ctx, term, category)
	if err != nil {
		return nil, err
	}

	results := j.collect(ctx, raw)
	prioritize(results, q.Title)
	if data, err := json.Marshal(results); err == nil {
		j.cache.Set(cacheKey, string(data), cacheTTL)
	}
	return j.limit(results, q.Limit), nil
}

func (j *Jackett) query(ctx context.Context, term, category string) (*jackettResponse, error) {
	u, err := request.JoinURL(j.host, "api/v2.0/indexers/all/results")
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("apikey", j.apiKey)
	params.Set("Query", term)
	params.Set("Category[]", category)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	body, err := j.client.MakeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("jackett search failed: %w", err)
	}
	var resp jackettResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("jackett returned invalid response: %w", err)
	}
	return &resp, nil
}

// collect resolves each raw result to a magnet, deduplicating on
// info-hash. Redirect resolution fans out over a small worker group so
// one slow indexer does not stall the batch.
func (j *Jackett) collect(ctx context.Context, resp *jackettResponse) []Result {
	var mu sync.Mutex
	seen := make(map[string]bool)
	var results []Result

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for _, r := range resp.Results {
		if !j.sizeAllowed(r.Size) {
			continue
		}
		r := r
		g.Go(func() error {
			magnet := r.MagnetUri
			if magnet == "" && r.Link != "" {
				magnet = j.resolveMagnet(gctx, r.Link)
			}
			if magnet == "" {
				return nil
			}
			m, err := utils.GetMagnetInfo(magnet)
			if err != nil {
				j.logger.Debug().Err(err).Str("title", r.Title).Msg("Skipping unparsable magnet")
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[m.InfoHash] {
				return nil
			}
			seen[m.InfoHash] = true
			results = append(results, Result{
				Title:    r.Title,
				InfoHash: m.InfoHash,
				Magnet:   magnet,
				Size:     r.Size,
				Seeders:  r.Seeders,
				Indexer:  r.Tracker,
			})
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// resolveMagnet follows a Jackett download link far enough to read the
// magnet URI off the redirect Location header.
func (j *Jackett) resolveMagnet(ctx context.Context, link string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	resp, err := j.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	loc := resp.Header.Get("Location")
	if strings.HasPrefix(loc, "magnet:") {
		return loc
	}
	return ""
}

// sizeAllowed applies the configured size bounds. Unreported sizes pass;
// the indexer may simply not know.
func (j *Jackett) sizeAllowed(size int64) bool {
	if size == 0 {
		return true
	}
	if j.minSize > 0 && size < j.minSize {
		return false
	}
	if j.maxSize > 0 && size > j.maxSize {
		return false
	}
	return true
}

func (j *Jackett) limit(results []Result, limit int) []Result {
	if limit <= 0 || limit > j.maxResults {
		limit = j.maxResults
	}
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

// prioritize orders results so titles that actually contain the query
// come first, then by seeders.
func prioritize(results []Result, title string) {
	pattern := regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(title), " ", ".?") + `\b`)
	sort.SliceStable(results, func(a, b int) bool {
		am := pattern.MatchString(results[a].Title)
		bm := pattern.MatchString(results[b].Title)
		if am != bm {
			return am
		}
		return results[a].Seeders > results[b].Seeders
	})
}
