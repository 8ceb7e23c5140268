package http

import (
	"net/http"
	"strconv"

	"financas/internal/core"
	"financas/internal/storage"
)

func (s *Server) handleListRendimentos(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	page, limit := paginationParams(r)

	q := r.URL.Query()
	filter := storage.RendimentoFilter{
		UserID: user.ID,
		Tipo:   q.Get("tipo"),
		Mes:    core.NormalizeMes(q.Get("mes")),
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	}
	if raw := q.Get("ano"); raw != "" {
		if ano, err := strconv.Atoi(raw); err == nil {
			filter.Ano = ano
		}
	}

	rendimentos, pagination, err := s.store.Rendimentos().List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, listResponse[core.Rendimento]{Items: rendimentos, Pagination: pagination})
}

func (s *Server) handleCreateRendimento(w http.ResponseWriter, r *http.Request) {
	var req rendimentoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(r.Context())
	rendimento, err := req.toDomain(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.rendimentos.Create(r.Context(), rendimento)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAnalytics(user.ID)
	writeSuccess(w, http.StatusCreated, created)
}

func (s *Server) handleGetRendimento(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	rendimento, err := s.store.Rendimentos().GetByID(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, rendimento)
}

func (s *Server) handleUpdateRendimento(w http.ResponseWriter, r *http.Request) {
	var req rendimentoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(r.Context())
	rendimento, err := req.toDomain(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.rendimentos.Update(r.Context(), user.ID, r.PathValue("id"), rendimento)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAnalytics(user.ID)
	writeSuccess(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRendimento(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := s.rendimentos.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateAnalytics(user.ID)
	writeSuccess(w, http.StatusOK, map[string]string{"message": "rendimento removido"})
}

func (s *Server) handleRendimentosByPeriod(w http.ResponseWriter, r *http.Request) {
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

	rendimentos, err := s.store.Rendimentos().ListByPeriod(r.Context(), user.ID, mes, ano)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, rendimentos)
}

func (s *Server) handleRendimentoStats(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	mes, ano, err := periodParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stats, err := s.store.Rendimentos().Stats(r.Context(), user.ID, mes, ano)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

func (s *Server) handleSearchRendimentos(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	q := sanitizeInput(r.URL.Query().Get("q"))
	if q == "" {
		s.writeError(w, r, (&core.ValidationError{}).Add("q", "termo de pesquisa e obrigatorio").OrNil())
		return
	}

	page, limit := paginationParams(r)
	rendimentos, pagination, err := s.store.Rendimentos().Search(r.Context(), user.ID, q, page, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, listResponse[core.Rendimento]{Items: rendimentos, Pagination: pagination})
}
