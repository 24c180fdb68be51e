package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kozko2001/obsidian-wallabag/pkg/wallabag"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// runsHandler returns the most recent sync runs
func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	runs, err := s.history.GetRuns(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] failed to get runs: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, runs)
}

// entriesHandler returns the last known per-entry sync state
func (s *Server) entriesHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	entries, err := s.history.GetEntries(r.Context(), limit, offset)
	if err != nil {
		log.Printf("[ERROR] failed to get entries: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, entries)
}

// syncHandler triggers an immediate sync run and reports its result
func (s *Server) syncHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.syncer.Run(r.Context())
	if err != nil {
		log.Printf("[WARN] on-demand sync failed: %v", err)

		code := http.StatusBadGateway
		var authErr *wallabag.AuthError
		if errors.As(err, &authErr) {
			code = http.StatusUnauthorized
		}
		renderError(w, r, err, code)
		return
	}

	renderJSON(w, r, http.StatusOK, map[string]interface{}{
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"failed":  result.Failed,
	})
}

// queryInt parses an integer query parameter with a default
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// renderJSON sends data as JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
