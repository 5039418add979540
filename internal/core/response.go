// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"net/http"
)

// WriteJSON is used by the operational endpoints. Pages go through the web
// renderer instead.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}
