package httpapi

import "net/http"

// registerDebugRoutes wires the read-only introspection endpoints, carried
// over from the debug handler precedent this package is grounded on.
func registerDebugRoutes(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("/debug/maps", withCORS(s.handleDebugMaps))
}

type debugMapSummary struct {
	ID        string `json:"id"`
	Active    bool   `json:"active"`
	DogCount  int    `json:"dogCount"`
	LootCount int    `json:"lootCount"`
}

func (s *Server) handleDebugMaps(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	summaries := s.App.DebugSessions()
	out := make([]debugMapSummary, 0, len(summaries))
	for _, sm := range summaries {
		out = append(out, debugMapSummary{
			ID: string(sm.MapID), Active: sm.Active, DogCount: sm.DogCount, LootCount: sm.LootCount,
		})
	}

	writeJSON(w, http.StatusOK, out)
}
