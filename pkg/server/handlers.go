package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/sirrobot01/streamgate/internal/request"
	"github.com/sirrobot01/streamgate/pkg/debrid/realdebrid"
	"github.com/sirrobot01/streamgate/pkg/debrid/stream"
	"github.com/sirrobot01/streamgate/pkg/debrid/types"
	"github.com/sirrobot01/streamgate/pkg/search"
)

type streamRequest struct {
	Torrents []string `json:"torrents"`
	Season   int      `json:"season,omitempty"`
	Episode  int      `json:"episode,omitempty"`
	MaxLinks int      `json:"max_links,omitempty"`
	Debrid   string   `json:"debrid,omitempty"`
}

type streamEvent struct {
	Link  *types.StreamLink `json:"link,omitempty"`
	Error string            `json:"error,omitempty"`
}

// handleStream resolves the posted torrents one at a time and writes
// each link as a newline-delimited JSON event as soon as it is ready.
// Closing the connection cancels resolution.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req streamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Torrents) == 0 {
		http.Error(w, "no torrents provided", http.StatusBadRequest)
		return
	}

	gen, err := s.engine.Generator(req.Debrid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st := gen.Generate(r.Context(), stream.Request{
		Torrents: req.Torrents,
		Season:   req.Season,
		Episode:  req.Episode,
		MaxLinks: req.MaxLinks,
	})
	defer st.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	enc := json.NewEncoder(w)
	for res := range st.Results() {
		ev := streamEvent{Link: res.Link}
		if res.Err != nil {
			ev.Error = res.Err.Error()
		}
		if err := enc.Encode(ev); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.jackett == nil {
		http.Error(w, "search is not configured", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	title := q.Get("q")
	if title == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}
	season, _ := strconv.Atoi(q.Get("season"))
	episode, _ := strconv.Atoi(q.Get("episode"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	results, err := s.jackett.Search(r.Context(), search.Query{
		Title:   title,
		Season:  season,
		Episode: episode,
		Limit:   limit,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("query", title).Msg("Search failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	request.JSONResponse(w, results, http.StatusOK)
}

// handleDeviceCode starts the device authorization flow and returns the
// verification details the user needs to approve access.
func (s *Server) handleDeviceCode(w http.ResponseWriter, r *http.Request) {
	rd, err := s.realdebrid()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dc, err := rd.GetDeviceCode(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	request.JSONResponse(w, dc, http.StatusOK)
}

type tokenRequest struct {
	DeviceCode string `json:"device_code"`
}

// handleToken polls the device authorization until the user approves,
// then returns the encoded credential for use as an api key.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceCode == "" {
		http.Error(w, "missing device_code", http.StatusBadRequest)
		return
	}
	rd, err := s.realdebrid()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token, err := rd.Authorize(r.Context(), req.DeviceCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	request.JSONResponse(w, map[string]string{"token": token}, http.StatusOK)
}

type accountInfo struct {
	Debrid      string         `json:"debrid"`
	User        *types.Account `json:"user"`
	ActiveCount int            `json:"active_count,omitempty"`
	ActiveLimit int            `json:"active_limit,omitempty"`
}

// handleAccounts reports the account behind each configured provider,
// including how close it is to its active-transfer limit.
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	var accounts []accountInfo
	for _, name := range s.engine.Names() {
		client, err := s.engine.Client(name)
		if err != nil {
			continue
		}
		user, err := client.GetUser(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Str("debrid", name).Msg("Failed to fetch account")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		info := accountInfo{Debrid: name, User: user}
		if rd, ok := client.(*realdebrid.RealDebrid); ok {
			if nb, limit, err := rd.ActiveCount(r.Context()); err == nil {
				info.ActiveCount = nb
				info.ActiveLimit = limit
			}
		}
		accounts = append(accounts, info)
	}
	request.JSONResponse(w, accounts, http.StatusOK)
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.PruneEnded(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) realdebrid() (*realdebrid.RealDebrid, error) {
	client, err := s.engine.Client("realdebrid")
	if err != nil {
		return nil, err
	}
	rd, ok := client.(*realdebrid.RealDebrid)
	if !ok {
		return nil, fmt.Errorf("provider does not support device authorization")
	}
	return rd, nil
}
