// Package server exposes the session operations as a JSON API. It holds no
// state of its own: every request is routed through the service, so the API
// and the CLI always observe the same session snapshot.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/eegvizlab/eegviz/internal/analysis"
	"github.com/eegvizlab/eegviz/internal/config"
	"github.com/eegvizlab/eegviz/internal/filter"
	"github.com/eegvizlab/eegviz/internal/service"
)

// Server is the HTTP front over one interactive session.
type Server struct {
	service service.Service
	cfg     *config.Config
	port    int
}

// New creates a server bound to the given service.
func New(svc service.Service, cfg *config.Config) *Server {
	return &Server{service: svc, cfg: cfg, port: cfg.Server.Port}
}

// Start registers the routes and serves until the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("starting eegviz server", "port", s.port, "url", fmt.Sprintf("http://localhost:%d", s.port))
	return http.ListenAndServe(addr, s.Handler())
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/load", s.handleLoad)
	mux.HandleFunc("/api/clear", s.handleClear)
	mux.HandleFunc("/api/channels", s.handleChannels)
	mux.HandleFunc("/api/channels/bad", s.handleBadChannels)
	mux.HandleFunc("/api/filters", s.handleFilters)
	mux.HandleFunc("/api/window", s.handleWindow)
	mux.HandleFunc("/api/markers", s.handleMarkers)
	mux.HandleFunc("/api/bands", s.handleBands)
	mux.HandleFunc("/api/bands/power", s.handleBandPower)
	mux.HandleFunc("/api/bands/contrast", s.handleBandContrast)
	mux.HandleFunc("/api/exports", s.handleExports)
	mux.HandleFunc("/api/export/markers", s.handleExportMarkers)
	mux.HandleFunc("/api/export/summary", s.handleExportSummary)
	mux.HandleFunc("/api/export/bandpower", s.handleExportBandPower)
	mux.HandleFunc("/api/preferences", s.handlePreferences)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.service.Summary())
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "request must carry a non-empty path")
		return
	}

	warnings, err := s.service.LoadRecording(req.Path)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"warnings": warnings,
		"summary":  s.service.Summary(),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.service.ClearRecording()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"catalog":  s.service.Channels(),
			"selected": s.service.SelectedChannels(),
			"bad":      s.service.BadChannels(),
		})
	case http.MethodPost:
		var req struct {
			Channels []string `json:"channels"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.service.SelectChannels(req.Channels); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "selected": s.service.SelectedChannels()})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBadChannels(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Mark   []string `json:"mark,omitempty"`
		Unmark []string `json:"unmark,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Mark) > 0 {
		if err := s.service.MarkBad(req.Mark); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if len(req.Unmark) > 0 {
		if err := s.service.UnmarkBad(req.Unmark); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "bad": s.service.BadChannels()})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"applied":  s.service.Summary().FilterApplied,
			"params":   s.service.FilterParams(),
			"defaults": s.service.DefaultFilterParams(),
		})
	case http.MethodPost:
		var p filter.Params
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.service.ApplyFilters(p); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "pipeline": p.PipelineSteps()})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.service.Window())
	case http.MethodPost:
		var req struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		win, warnings, err := s.service.SetWindow(req.Start, req.End)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "window": win, "warnings": warnings})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.service.Markers())
	case http.MethodPost:
		var req struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
			writeError(w, http.StatusBadRequest, "request must carry a non-empty path")
			return
		}
		report, err := s.service.ImportMarkerFile(req.Path)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "report": report})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBands(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Bands)
}

func (s *Server) handleBandPower(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	band := r.URL.Query().Get("band")
	if band == "" {
		writeError(w, http.StatusBadRequest, "missing band query parameter")
		return
	}

	result, err := s.service.BandPower(band)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBandContrast(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Band   string            `json:"band"`
		Before analysis.Interval `json:"before"`
		After  analysis.Interval `json:"after"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Band == "" {
		writeError(w, http.StatusBadRequest, "request must carry band, before and after")
		return
	}

	contrast, err := s.service.BandContrast(req.Band, req.Before, req.After)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"band": req.Band, "contrast_db": contrast})
}

func (s *Server) handleExports(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	entries, err := s.service.Exports()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleExportMarkers(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, func() (any, error) { return s.service.ExportMarkers() })
}

func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, func() (any, error) { return s.service.ExportSummary() })
}

func (s *Server) handleExportBandPower(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Band string `json:"band"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Band == "" {
		writeError(w, http.StatusBadRequest, "request must carry a band")
		return
	}
	entry, err := s.service.ExportBandPower(req.Band)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "export": entry})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, run func() (any, error)) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	entry, err := run()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "export": entry})
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.service.Preferences())
	case http.MethodPost:
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		for k, v := range req {
			s.service.UpdatePreference(k, v)
		}
		writeJSON(w, http.StatusOK, s.service.Preferences())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
