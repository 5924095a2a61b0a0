package web

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/skbidisigma1/groupme-cli/errors"
	"github.com/skbidisigma1/groupme-cli/page"
	"github.com/skbidisigma1/groupme-cli/stats"
)

// statsMessageCap bounds how much history a stats request crawls so a
// huge group cannot hold a request open indefinitely.
const statsMessageCap = 5000

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// sendRequest is the POST body for sending a message.
type sendRequest struct {
	Text string `json:"text"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps the error taxonomy onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.IsInvalid(err):
		status = http.StatusBadRequest
	case stderrors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case stderrors.Is(err, errors.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	s.logger.Warn("request failed", "status", status, "error", err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.client.Me(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.client.ListAllGroups(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if group, ok := s.groupCache.Get(id); ok {
		s.writeJSON(w, http.StatusOK, group)
		return
	}

	group, err := s.client.GetGroup(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.groupCache.Set(id, group)
	s.writeJSON(w, http.StatusOK, group)
}

// handleMessages serves one page of history; before_id and limit map
// straight onto the upstream cursor parameters
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	limit := page.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	msgs, err := s.client.GroupMessages(r.Context(), r.PathValue("id"),
		r.URL.Query().Get("before_id"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Text == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}

	msg, err := s.client.SendGroupMessage(r.Context(), r.PathValue("id"), req.Text, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, msg)
}

// handleStats crawls recent history and aggregates it. The crawl is
// capped; n selects how much history to cover, top how many leaderboard
// entries to return.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count := statsMessageCap
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "n must be a positive integer"})
			return
		}
		if n < count {
			count = n
		}
	}
	topN := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "top must be a positive integer"})
			return
		}
		topN = n
	}

	groupID := r.PathValue("id")
	cacheKey := fmt.Sprintf("%s/%d/%d", groupID, count, topN)
	if cached, ok := s.statsCache.Get(cacheKey); ok {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	fetcher := page.NewFetcher(page.GroupMessages(s.client, groupID),
		page.WithLogger(s.logger),
		page.WithMetrics(s.pageMetrics))
	history, err := fetcher.Latest(r.Context(), count)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result := stats.Collect(history, topN)
	s.statsCache.Set(cacheKey, result)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.client.ListChats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, chats)
}
