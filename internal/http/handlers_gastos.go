package http

import (
	"net/http"
	"strconv"

	"financas/internal/core"
	"financas/internal/storage"
)

func (s *Server) handleListGastos(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	page, limit := paginationParams(r)

	q := r.URL.Query()
	filter := storage.GastoFilter{
		UserID:    user.ID,
		Categoria: q.Get("categoria"),
		Tipo:      q.Get("tipo"),
		Mes:       core.NormalizeMes(q.Get("mes")),
		Status:    q.Get("status"),
		Page:      page,
		Limit:     limit,
	}
	if raw := q.Get("ano"); raw != "" {
		if ano, err := strconv.Atoi(raw); err == nil {
			filter.Ano = ano
		}
	}

	gastos, pagination, err := s.store.Gastos().List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, listResponse[core.Gasto]{Items: gastos, Pagination: pagination})
}

func (s *Server) handleCreateGasto(w http.ResponseWriter, r *http.Request) {
	var req gastoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(r.Context())
	gasto, err := req.toDomain(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.gastos.Create(r.Context(), gasto)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAnalytics(user.ID)
	writeSuccess(w, http.StatusCreated, created)
}

func (s *Server) handleGetGasto(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	gasto, err := s.store.Gastos().GetByID(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, gasto)
}

func (s *Server) handleUpdateGasto(w http.ResponseWriter, r *http.Request) {
	var req gastoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(r.Context())
	gasto, err := req.toDomain(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.gastos.Update(r.Context(), user.ID, r.PathValue("id"), gasto)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAnalytics(user.ID)
	writeSuccess(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGasto(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := s.gastos.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAnalytics(user.ID)
	writeSuccess(w, http.StatusOK, map[string]string{"message": "gasto removido"})
}

func (s *Server) handleGastosByPeriod(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	mes := core.NormalizeMes(r.PathValue("mes"))
	if !core.ValidMes(mes) {
		s.writeError(w, r, (&core.ValidationError{}).Add("mes", "mes invalido").OrNil())
		return
	}
	ano, err := strconv.Atoi(r.PathValue("ano"))
	if err != nil {
		s.writeError(w, r, (&core.ValidationError{}).Add("ano", "ano invalido").OrNil())
		return
	}

	gastos, err := s.store.Gastos().ListByPeriod(r.Context(), user.ID, mes, ano)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, gastos)
}

func (s *Server) handleGastosByCategory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	_, limit := paginationParams(r)

	gastos, err := s.store.Gastos().ListByCategory(r.Context(), user.ID, r.PathValue("categoria"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, gastos)
}

func (s *Server) handleGastoStats(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	mes, ano, err := periodParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stats, err := s.store.Gastos().Stats(r.Context(), user.ID, mes, ano)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

func (s *Server) handleSearchGastos(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	q := sanitizeInput(r.URL.Query().Get("q"))
	if q == "" {
		s.writeError(w, r, (&core.ValidationError{}).Add("q", "termo de pesquisa e obrigatorio").OrNil())
		return
	}

	page, limit := paginationParams(r)
	gastos, pagination, err := s.store.Gastos().Search(r.Context(), user.ID, q, page, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, listResponse[core.Gasto]{Items: gastos, Pagination: pagination})
}
