// Package api serves the run history over HTTP: JSON for the stored runs
// and their encounters, and an interactive report page per run.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/report"
	"github.com/banshee-data/beambeam/internal/resolve"
	"github.com/banshee-data/beambeam/internal/store"
	"github.com/banshee-data/beambeam/internal/units"
)

// RunStore is the read side of store.Store.
type RunStore interface {
	ListRuns(limit int) ([]store.Run, error)
	GetRun(id string) (store.Run, error)
	LoadRows(id, beam string) ([]encounter.KeepRow, error)
	LoadSummaries(id, beam string) ([]resolve.Summary, error)
}

var _ RunStore = (*store.Store)(nil)

type Server struct {
	runs  RunStore
	units string
}

// NewServer returns a server reporting lengths in unit unless a request
// asks for another one. Unknown units fall back to mm.
func NewServer(runs RunStore, unit string) *Server {
	if !units.IsValidLength(unit) {
		unit = units.Millimeter
	}
	return &Server{runs: runs, units: unit}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/{id}", s.showRun)
	mux.HandleFunc("/api/runs/{id}/encounters", s.listEncounters)
	mux.HandleFunc("/api/runs/{id}/summaries", s.listSummaries)
	mux.HandleFunc("/runs/{id}/report", s.showReport)
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status and duration of each request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{w, http.StatusOK}
		next.ServeHTTP(rec, r)
		monitoring.Logf("[%d] %s %s %.1fms", rec.status, r.Method, r.RequestURI,
			float64(time.Since(start).Nanoseconds())/1e6)
	})
}

// unit returns the length unit requested with ?unit=, or the default.
func (s *Server) unit(r *http.Request) (string, error) {
	u := r.URL.Query().Get("unit")
	if u == "" {
		return s.units, nil
	}
	if !units.IsValidLength(u) {
		return "", fmt.Errorf("invalid 'unit' parameter %q", u)
	}
	return u, nil
}

func lookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		notFound(w, err.Error())
		return
	}
	internalError(w, err.Error())
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			badRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = n
	}
	runs, err := s.runs.ListRuns(limit)
	if err != nil {
		internalError(w, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	run, err := s.runs.GetRun(r.PathValue("id"))
	if err != nil {
		lookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) listEncounters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	beam := r.URL.Query().Get("beam")
	if beam == "" {
		badRequest(w, "missing 'beam' parameter")
		return
	}
	rows, err := s.runs.LoadRows(r.PathValue("id"), beam)
	if err != nil {
		lookupError(w, err)
		return
	}
	if rows == nil {
		rows = []encounter.KeepRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) listSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	unit, err := s.unit(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	sums, err := s.runs.LoadSummaries(r.PathValue("id"), r.URL.Query().Get("beam"))
	if err != nil {
		lookupError(w, err)
		return
	}
	for i := range sums {
		sums[i].SeparationX = units.ConvertLength(sums[i].SeparationX, unit)
		sums[i].SeparationY = units.ConvertLength(sums[i].SeparationY, unit)
	}
	if sums == nil {
		sums = []resolve.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"unit": unit, "summaries": sums})
}

func (s *Server) showReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	unit, err := s.unit(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id := r.PathValue("id")
	sums, err := s.runs.LoadSummaries(id, "")
	if err != nil {
		lookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.WriteHTML(w, "Run "+id, unit, sums); err != nil {
		monitoring.Logf("report %s: %v", id, err)
	}
}
