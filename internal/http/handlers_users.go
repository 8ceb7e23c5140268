package http

import (
	"net/http"
	"strconv"
	"time"

	"financas/internal/core"
)

// handleListUsers returns the shared household listing. Password hashes are
// excluded by serialization, not by handler logic.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.Users().List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if err := s.requireSelf(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.store.Users().GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if err := s.requireSelf(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(r.Context())
	if name := sanitizeInput(req.Name); name != "" {
		user.Name = name
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}

	updated, err := s.store.Users().Update(r.Context(), user.ID, user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, updated)
}

// handleDeactivateUser soft-deletes the account. Data is kept; the account
// simply stops authenticating.
func (s *Server) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	if err := s.requireSelf(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Users().Deactivate(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Account deactivated", "user_id", r.PathValue("id"))
	writeSuccess(w, http.StatusOK, map[string]string{"message": "conta desativada"})
}

// requireSelf enforces that {id} names the authenticated account.
func (s *Server) requireSelf(r *http.Request) error {
	if currentUser(r.Context()).ID != r.PathValue("id") {
		return core.ErrForbidden
	}
	return nil
}

func (s *Server) handleListDaysWorked(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	ano := time.Now().Year()
	if raw := r.URL.Query().Get("ano"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			ano = v
		}
	}

	records, err := s.store.DaysWorked().List(r.Context(), user.ID, ano)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, records)
}

func (s *Server) handleUpsertDaysWorked(w http.ResponseWriter, r *http.Request) {
	var req daysWorkedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(r.Context())
	record := &core.DaysWorked{
		UserID: user.ID,
		MesID:  core.NormalizeMes(req.MesID),
		Ano:    req.Ano,
		Andre:  req.Andre,
		Aline:  req.Aline,
	}
	if err := record.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	saved, err := s.store.DaysWorked().Upsert(r.Context(), record)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, saved)
}

func (s *Server) handleListFixedCosts(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	ano := time.Now().Year()
	if raw := r.URL.Query().Get("ano"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			ano = v
		}
	}

	records, err := s.store.FixedCosts().List(r.Context(), user.ID, ano)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, records)
}

func (s *Server) handleUpsertFixedCost(w http.ResponseWriter, r *http.Request) {
	var req fixedCostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(r.Context())
	record := &core.FixedCost{
		UserID:    user.ID,
		MesID:     core.NormalizeMes(req.MesID),
		Ano:       req.Ano,
		Categoria: sanitizeInput(req.Categoria),
		Valor:     req.Valor,
	}
	if err := record.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	saved, err := s.store.FixedCosts().Upsert(r.Context(), record)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, saved)
}
