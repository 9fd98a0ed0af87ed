package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/boom-roasted/slack-export-to-md/pkg/search"
	"github.com/boom-roasted/slack-export-to-md/pkg/vector"
)

// Server serves the converted-archive search API.
type Server struct {
	store vector.Client
	hub   *search.Hub
}

// NewServer creates a new API server instance
func NewServer(store vector.Client, hub *search.Hub) *Server {
	return &Server{
		store: store,
		hub:   hub,
	}
}

// Router returns the HTTP handler for the server
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", s.handleHealth)

	// Archive search
	mux.HandleFunc("/api/v1/search", s.handleSearch)

	// Live search socket
	mux.HandleFunc("/ws", s.hub.ServeWS)

	return s.withMiddleware(mux)
}

// withMiddleware wraps the handler with common middleware
func (s *Server) withMiddleware(h http.Handler) http.Handler {
	// Add CORS headers
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

// handleHealth returns the health status of the server
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := s.store.HealthCheck(r.Context()); err != nil {
		status = "degraded"
		log.Printf("Health check: %v", err)
	}

	response := map[string]string{
		"status":  status,
		"service": "slack-export-archive",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleSearch handles search queries via GET query parameters or a POST body.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest

	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("q")
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			limit, err := strconv.Atoi(limitStr)
			if err != nil {
				s.writeError(w, http.StatusBadRequest, ErrInvalidLimit.Error())
				return
			}
			req.Limit = limit
		}

	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	docs, err := s.store.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		log.Printf("Search failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, SearchResult{
			ID:         doc.ID,
			Content:    doc.Content,
			Score:      doc.Score,
			Channel:    doc.Channel,
			Author:     doc.Author,
			AuthorName: doc.AuthorName,
			CreatedAt:  doc.CreatedAt,
			IsThread:   doc.IsThread,
			ReplyCount: doc.ReplyCount,
			Tags:       doc.Tags,
		})
	}

	response := SearchResponse{
		Results:          results,
		Count:            len(results),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
