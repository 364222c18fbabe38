package http

import (
	"net/http"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	data, err := s.reports.Dashboard(r.Context(), currentUser(r).ID, p)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	p, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	// "daily" buckets by hour, anything else by calendar day.
	filter := r.URL.Query().Get("filtro")
	if filter == "" {
		filter = "monthly"
	}

	series, err := s.reports.Trend(r.Context(), currentUser(r).ID, p, filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, series)
}
