package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mnemon/mnemon/internal/engine"
	"github.com/mnemon/mnemon/internal/fsrs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, fsrs.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// queryInt64 parses a required int64 query parameter; ok is false if it
// is missing or malformed.
func queryInt64(r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func urlTopicID(r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "topicID"), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Server) handleSubmitEncoding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    int64   `json:"user_id"`
		TopicID   int64   `json:"topic_id"`
		TopicKind string  `json:"topic_kind"`
		TopicName string  `json:"topic_name"`
		Score     float64 `json:"comprehension_score"`
		Summary   string  `json:"summary"`
		Feedback  string  `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.UserID == 0 || req.TopicID == 0 {
		http.Error(w, `{"error":"user_id and topic_id required"}`, http.StatusBadRequest)
		return
	}
	if req.Score < 0 || req.Score > 1 {
		http.Error(w, `{"error":"comprehension_score must be in [0,1]"}`, http.StatusBadRequest)
		return
	}

	result, err := s.engine.SubmitEncoding(engine.EncodingRequest{
		UserID:    req.UserID,
		TopicID:   req.TopicID,
		TopicKind: req.TopicKind,
		TopicName: req.TopicName,
		Score:     req.Score,
		Summary:   req.Summary,
		Feedback:  req.Feedback,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubmitRecall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    int64    `json:"user_id"`
		TopicID   int64    `json:"topic_id"`
		TopicKind string   `json:"topic_kind"`
		Answer    string   `json:"answer"`
		Score     *float64 `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.UserID == 0 || req.TopicID == 0 {
		http.Error(w, `{"error":"user_id and topic_id required"}`, http.StatusBadRequest)
		return
	}
	if req.Answer == "" && req.Score == nil {
		http.Error(w, `{"error":"answer or score required"}`, http.StatusBadRequest)
		return
	}

	result, err := s.engine.SubmitRecall(engine.RecallRequest{
		UserID:    req.UserID,
		TopicID:   req.TopicID,
		TopicKind: req.TopicKind,
		Answer:    req.Answer,
		Score:     req.Score,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryInt64(r, "user_id")
	if !ok {
		http.Error(w, `{"error":"user_id parameter required"}`, http.StatusBadRequest)
		return
	}

	dash, err := s.engine.Dashboard(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryInt64(r, "user_id")
	if !ok {
		http.Error(w, `{"error":"user_id parameter required"}`, http.StatusBadRequest)
		return
	}

	ids, err := s.engine.DueTopics(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"due_topics": ids,
		"count":      len(ids),
	})
}

func (s *Server) handleDecayCurve(w http.ResponseWriter, r *http.Request) {
	topicID, ok := urlTopicID(r)
	if !ok {
		http.Error(w, `{"error":"invalid topic id"}`, http.StatusBadRequest)
		return
	}
	userID, ok := queryInt64(r, "user_id")
	if !ok {
		http.Error(w, `{"error":"user_id parameter required"}`, http.StatusBadRequest)
		return
	}

	days := 10
	if d := r.URL.Query().Get("days"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			days = n
		}
	}

	curve, err := s.engine.DecayCurve(userID, topicID, r.URL.Query().Get("kind"), days, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, curve)
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	topicID, ok := urlTopicID(r)
	if !ok {
		http.Error(w, `{"error":"invalid topic id"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		UserID    int64   `json:"user_id"`
		TopicKind string  `json:"topic_kind"`
		Stability float64 `json:"stability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
		return
	}

	tl, err := s.engine.OverrideStability(req.UserID, topicID, req.TopicKind, req.Stability)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"topic_id":    tl.TopicID,
		"stability":   tl.Stability,
		"next_due_at": tl.NextDueAt,
	})
}

func (s *Server) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topicID, ok := urlTopicID(r)
		if !ok {
			http.Error(w, `{"error":"invalid topic id"}`, http.StatusBadRequest)
			return
		}

		var req struct {
			UserID    int64  `json:"user_id"`
			TopicKind string `json:"topic_kind"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}
		if req.UserID == 0 {
			http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
			return
		}

		if err := s.engine.SetTopicActive(req.UserID, topicID, req.TopicKind, active); err != nil {
			writeError(w, err)
			return
		}

		status := "archived"
		if active {
			status = "restored"
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": status})
	}
}
