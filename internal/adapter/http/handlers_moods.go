package adapthttp

import (
	"net/http"
)

func (s *Server) handleMoods(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		limit := intQuery(r, "limit", 20)
		items, err := s.moods.ListRecent(r.Context(), user.ID, limit)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodPost:
		var body struct {
			MoodID      string `json:"moodId"`
			JournalText string `json:"journalText"`
			Date        string `json:"date"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		res, err := s.moods.Record(r.Context(), user.ID, body.MoodID, body.JournalText, body.Date)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMoodStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	summary, err := s.moods.Stats(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMoodChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	points, err := s.moods.Chart(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}
