package adapthttp

import (
	"net/http"
)

func (s *Server) handleBreathing(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		items, err := s.breathing.List(r.Context(), user.ID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodPost:
		var body struct {
			DurationSeconds int `json:"durationSeconds"`
			Cycles          int `json:"cycles"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		res, err := s.breathing.Record(r.Context(), user.ID, body.DurationSeconds, body.Cycles)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		msgs, err := s.chat.History(r.Context(), user.ID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
	case http.MethodPost:
		var body struct {
			Content string `json:"content"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		res, err := s.chat.Send(r.Context(), user.ID, body.Content)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
