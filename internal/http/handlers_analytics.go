package http

import (
	"fmt"
	"net/http"
	"strconv"
)

func analyticsCacheKey(userID, mes string, ano int) string {
	return fmt.Sprintf("%s:%s:%d", userID, mes, ano)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	mes, ano, err := periodParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := analyticsCacheKey(user.ID, mes, ano)
	if dashboard, ok := s.dashboardCache.Get(key); ok {
		writeSuccess(w, http.StatusOK, dashboard)
		return
	}

	dashboard, err := s.store.Analytics().Dashboard(r.Context(), user.ID, mes, ano)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.dashboardCache.Set(key, dashboard)
	writeSuccess(w, http.StatusOK, dashboard)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	meses := 12
	if raw := r.URL.Query().Get("meses"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 36 {
			meses = v
		}
	}

	key := fmt.Sprintf("%s:trends:%d", user.ID, meses)
	if trends, ok := s.trendsCache.Get(key); ok {
		writeSuccess(w, http.StatusOK, trends)
		return
	}

	trends, err := s.store.Analytics().Trends(r.Context(), user.ID, meses)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.trendsCache.Set(key, trends)
	writeSuccess(w, http.StatusOK, trends)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	mes, ano, err := periodParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := analyticsCacheKey(user.ID, mes, ano)
	if report, ok := s.categoriesCache.Get(key); ok {
		writeSuccess(w, http.StatusOK, report)
		return
	}

	report, err := s.store.Analytics().Categories(r.Context(), user.ID, mes, ano)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.categoriesCache.Set(key, report)
	writeSuccess(w, http.StatusOK, report)
}

// handleInsights serves the materialized report for the period, generating
// it on the spot when the worker has not produced one yet.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	mes, ano, err := periodParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.reports.Get(r.Context(), user.ID, mes, ano)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, report)
}
