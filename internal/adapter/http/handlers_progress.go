package adapthttp

import (
	"net/http"
)

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	res, err := s.progress.Snapshot(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleProgressEvaluate runs a pass on demand, e.g. when the client opens the
// achievements screen after writes made elsewhere.
func (s *Server) handleProgressEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	res, err := s.progress.Evaluate(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
