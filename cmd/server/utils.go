package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/lychee-technology/nilability"
)

// recordPath is a parsed /api/v1/records/... path.
type recordPath struct {
	record string
	// kind is "", "attributes" or "relationships".
	kind  string
	field string
}

// parseRecordPath parses /api/v1/records/{name}[/attributes|relationships/{field}]
func parseRecordPath(path string) (recordPath, error) {
	path = strings.TrimPrefix(path, "/api/v1/records/")
	path = strings.Trim(path, "/")

	if path == "" {
		return recordPath{}, fmt.Errorf("invalid path: empty record name")
	}

	parts := strings.Split(path, "/")

	switch len(parts) {
	case 1:
		return recordPath{record: parts[0]}, nil
	case 3:
		if parts[1] != "attributes" && parts[1] != "relationships" {
			return recordPath{}, fmt.Errorf("unknown resource %q", parts[1])
		}
		if parts[2] == "" {
			return recordPath{}, fmt.Errorf("invalid path: empty field name")
		}
		return recordPath{record: parts[0], kind: parts[1], field: parts[2]}, nil
	default:
		return recordPath{}, fmt.Errorf("invalid path format")
	}
}

// statusForError maps metadata errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case nilability.IsRecordNotFoundError(err), nilability.IsSnapshotNotFoundError(err):
		return http.StatusNotFound
	case nilability.IsMalformedMetadataError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// APIResponse is the standard response format
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeJSON writes JSON response to http.ResponseWriter
func writeJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, statusCode int, message string) error {
	return writeJSON(w, statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

// writeSuccess writes a success response
func writeSuccess(w http.ResponseWriter, statusCode int, data any) error {
	return writeJSON(w, statusCode, APIResponse{
		Success: true,
		Data:    data,
	})
}
