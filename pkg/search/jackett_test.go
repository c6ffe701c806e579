package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirrobot01/streamgate/internal/cache"
	"github.com/sirrobot01/streamgate/internal/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func newTestJackett(host string) *Jackett {
	return &Jackett{
		host:       host,
		apiKey:     "key",
		maxResults: 50,
		client: request.New(
			request.WithTimeout(5*time.Second),
			request.WithRedirectPolicy(func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			}),
		),
		cache:  cache.New(10),
		logger: zerolog.Nop(),
	}
}

func TestSearchMovies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2.0/indexers/all/results", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "key", q.Get("apikey"))
		assert.Equal(t, "Sintel", q.Get("Query"))
		assert.Equal(t, "2000", q.Get("Category[]"))
		fmt.Fprintf(w, `{"Results":[
			{"Title":"Sintel 1080p","Tracker":"idx1","MagnetUri":"magnet:?xt=urn:btih:%s&dn=Sintel","Size":1000,"Seeders":50},
			{"Title":"Sintel 720p","Tracker":"idx2","MagnetUri":"magnet:?xt=urn:btih:%s&dn=Sintel","Size":500,"Seeders":10}
		]}`, hashA, hashB)
	}))
	defer srv.Close()

	j := newTestJackett(srv.URL)
	results, err := j.Search(context.Background(), Query{Title: "Sintel"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, hashA, results[0].InfoHash)
	assert.Equal(t, "idx1", results[0].Indexer)
}

func TestSearchEpisodeQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Show S01E02", q.Get("Query"))
		assert.Equal(t, "5000", q.Get("Category[]"))
		fmt.Fprint(w, `{"Results":[]}`)
	}))
	defer srv.Close()

	j := newTestJackett(srv.URL)
	results, err := j.Search(context.Background(), Query{Title: "Show", Season: 1, Episode: 2})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchDeduplicatesByInfoHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Results":[
			{"Title":"Sintel take one","Tracker":"idx1","MagnetUri":"magnet:?xt=urn:btih:%s","Seeders":50},
			{"Title":"Sintel take two","Tracker":"idx2","MagnetUri":"magnet:?xt=urn:btih:%s","Seeders":80}
		]}`, hashA, hashA)
	}))
	defer srv.Close()

	j := newTestJackett(srv.URL)
	results, err := j.Search(context.Background(), Query{Title: "Sintel"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchResolvesRedirectMagnets(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dl/1" {
			w.Header().Set("Location", "magnet:?xt=urn:btih:"+hashA+"&dn=Sintel")
			w.WriteHeader(http.StatusFound)
			return
		}
		fmt.Fprintf(w, `{"Results":[
			{"Title":"Sintel","Tracker":"idx1","Link":"%s/dl/1","Seeders":5}
		]}`, srvURL)
	}))
	defer srv.Close()
	srvURL = srv.URL

	j := newTestJackett(srv.URL)
	results, err := j.Search(context.Background(), Query{Title: "Sintel"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, hashA, results[0].InfoHash)
}

func TestSearchDropsResultsWithoutMagnet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Results":[
			{"Title":"no magnet at all","Tracker":"idx1","Seeders":5},
			{"Title":"Sintel","Tracker":"idx2","MagnetUri":"magnet:?xt=urn:btih:%s","Seeders":5}
		]}`, hashA)
	}))
	defer srv.Close()

	j := newTestJackett(srv.URL)
	results, err := j.Search(context.Background(), Query{Title: "Sintel"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchPrioritizesMatchingTitles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Results":[
			{"Title":"Unrelated Pack","Tracker":"idx1","MagnetUri":"magnet:?xt=urn:btih:%s","Seeders":500},
			{"Title":"Big.Buck.Bunny.1080p","Tracker":"idx2","MagnetUri":"magnet:?xt=urn:btih:%s","Seeders":5}
		]}`, hashA, hashB)
	}))
	defer srv.Close()

	j := newTestJackett(srv.URL)
	results, err := j.Search(context.Background(), Query{Title: "Big Buck Bunny"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	// The title match outranks raw seeder count
	assert.Equal(t, hashB, results[0].InfoHash)
}

func TestSearchUsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"Results":[{"Title":"Sintel","Tracker":"idx1","MagnetUri":"magnet:?xt=urn:btih:%s","Seeders":5}]}`, hashA)
	}))
	defer srv.Close()

	j := newTestJackett(srv.URL)
	_, err := j.Search(context.Background(), Query{Title: "Sintel"})
	require.NoError(t, err)
	_, err = j.Search(context.Background(), Query{Title: "sintel"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSearchFiltersBySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Results":[
			{"Title":"Sintel tiny","Tracker":"idx1","MagnetUri":"magnet:?xt=urn:btih:%s","Size":100,"Seeders":50},
			{"Title":"Sintel full","Tracker":"idx2","MagnetUri":"magnet:?xt=urn:btih:%s","Size":5000,"Seeders":10}
		]}`, hashA, hashB)
	}))
	defer srv.Close()

	j := newTestJackett(srv.URL)
	j.minSize = 1000
	results, err := j.Search(context.Background(), Query{Title: "Sintel"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, hashB, results[0].InfoHash)
}

func TestSearchLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Results":[
			{"Title":"Sintel a","Tracker":"idx1","MagnetUri":"magnet:?xt=urn:btih:%s","Seeders":50},
			{"Title":"Sintel b","Tracker":"idx2","MagnetUri":"magnet:?xt=urn:btih:%s","Seeders":10}
		]}`, hashA, hashB)
	}))
	defer srv.Close()

	j := newTestJackett(srv.URL)
	results, err := j.Search(context.Background(), Query{Title: "Sintel", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
