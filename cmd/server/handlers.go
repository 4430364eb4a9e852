package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rt := s.current()
	if rt == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata not loaded")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"snapshotId": rt.SnapshotID,
		"records":    len(rt.Registry.ListRecords()),
	})
}

// handleReload handles POST /api/v1/reload
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.load == nil {
		writeError(w, http.StatusNotImplemented, "reload not configured")
		return
	}

	next, err := s.load(r.Context())
	if err != nil {
		zap.S().Warnw("snapshot reload failed; keeping current snapshot", "error", err)
		writeError(w, statusForError(err), fmt.Sprintf("reload failed: %v", err))
		return
	}
	s.swap(next)
	zap.S().Infow("snapshot reloaded", "snapshotId", next.SnapshotID)

	writeSuccess(w, http.StatusOK, map[string]any{"snapshotId": next.SnapshotID})
}

// handleListRecords handles GET /api/v1/records
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rt := s.current()
	if rt == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata not loaded")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"snapshotId": rt.SnapshotID,
		"records":    rt.Registry.ListRecords(),
	})
}

// recordsHandler dispatches /api/v1/records/{name}/...
func (s *Server) recordsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	path, err := parseRecordPath(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid path: %v", err))
		return
	}
	rt := s.current()
	if rt == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata not loaded")
		return
	}

	switch path.kind {
	case "":
		s.handleAnalyze(w, r, path.record)
	case "attributes":
		s.handleAttribute(w, r, path.record, path.field)
	case "relationships":
		s.handleRelationship(w, r, path.record, path.field)
	}
}

// handleAnalyze handles GET /api/v1/records/{name}
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, name string) {
	report, err := s.current().Analyzer.Analyze(r.Context(), name)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, report)
}

// handleAttribute handles GET /api/v1/records/{name}/attributes/{attr}?column=...
func (s *Server) handleAttribute(w http.ResponseWriter, r *http.Request, name, attribute string) {
	rt := s.current()
	record, err := rt.Registry.GetRecord(name)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	column := r.URL.Query().Get("column")
	decision := rt.Engine.ExplainAttribute(record, attribute, column)
	if column == "" {
		column = attribute
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"record":    name,
		"attribute": attribute,
		"column":    column,
		"nilable":   decision.Result,
		"rule":      decision.Rule,
	})
}

// handleRelationship handles GET /api/v1/records/{name}/relationships/{rel}
func (s *Server) handleRelationship(w http.ResponseWriter, r *http.Request, name, relationship string) {
	rt := s.current()
	if _, err := rt.Registry.GetRecord(name); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	reflection, ok := rt.Registry.Reflect(name, relationship)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("relationship %q not found on record %s", relationship, name))
		return
	}
	decision := rt.Engine.ExplainRelationship(reflection)
	writeSuccess(w, http.StatusOK, map[string]any{
		"record":       name,
		"relationship": relationship,
		"cardinality":  reflection.Cardinality,
		"required":     decision.Result,
		"rule":         decision.Rule,
	})
}
