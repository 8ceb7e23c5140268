package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"financas/internal/auth"
	"financas/internal/core"
)

func validateRegister(req *registerRequest) error {
	ve := &core.ValidationError{}
	if strings.TrimSpace(req.Name) == "" {
		ve.Add("name", "nome e obrigatorio")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		ve.Add("email", "email e obrigatorio")
	} else if !strings.Contains(email, "@") {
		ve.Add("email", "email invalido")
	}
	if len(req.Password) < 8 {
		ve.Add("password", "password deve ter pelo menos 8 caracteres")
	}
	return ve.OrNil()
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateRegister(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user := &core.User{
		Name:         sanitizeInput(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Provider:     "local",
		Preferences:  core.DefaultPreferences(),
		IsActive:     true,
	}
	if err := s.store.Users().Create(r.Context(), user); err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			s.writeError(w, r, (&core.ValidationError{}).Add("email", "email ja registado").OrNil())
			return
		}
		s.writeError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Account registered", "user_id", user.ID)
	writeSuccess(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.Users().GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Same answer for unknown email and wrong password.
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}
	if user.Provider != "local" || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}
	if !user.IsActive {
		s.writeError(w, r, core.ErrInactiveUser)
		return
	}

	s.stampLastLogin(r, user)

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := s.google.Verify(r.Context(), req.IDToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.Users().GetByEmail(r.Context(), strings.ToLower(profile.Email))
	switch {
	case err == nil:
		// Existing account, local or google, gets linked to the Google
		// identity on first use.
		if user.Provider == "local" && user.ProviderID == "" {
			user.Provider = "google"
			user.ProviderID = profile.Subject
			if user.Avatar == "" {
				user.Avatar = profile.Picture
			}
			if updated, uerr := s.store.Users().Update(r.Context(), user.ID, user); uerr == nil {
				user = updated
			}
		}
	case errors.Is(err, core.ErrNotFound):
		user = &core.User{
			Name:        profile.Name,
			Email:       strings.ToLower(profile.Email),
			Provider:    "google",
			ProviderID:  profile.Subject,
			Avatar:      profile.Picture,
			Preferences: core.DefaultPreferences(),
			IsActive:    true,
		}
		if cerr := s.store.Users().Create(r.Context(), user); cerr != nil {
			s.writeError(w, r, cerr)
			return
		}
	default:
		s.writeError(w, r, err)
		return
	}

	if !user.IsActive {
		s.writeError(w, r, core.ErrInactiveUser)
		return
	}

	s.stampLastLogin(r, user)

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, authResponse{Token: token, User: user})
}

// stampLastLogin records the login time. Failure is logged, never surfaced.
func (s *Server) stampLastLogin(r *http.Request, user *core.User) {
	user.LastLogin = time.Now().UTC()
	if _, err := s.store.Users().Update(r.Context(), user.ID, user); err != nil {
		s.logger.WarnContext(r.Context(), "Failed to stamp last login", "user_id", user.ID, "error", err)
	}
}

// handleLogout exists for client symmetry. Tokens are stateless, so there is
// nothing to revoke server-side.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"message": "sessao terminada"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, currentUser(r.Context()))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
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

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(r.Context())
	if user.Provider != "local" {
		s.writeError(w, r, core.ErrForbidden)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}
	if len(req.NewPassword) < 8 {
		s.writeError(w, r, (&core.ValidationError{}).Add("newPassword", "password deve ter pelo menos 8 caracteres").OrNil())
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user.PasswordHash = hash
	if _, err := s.store.Users().Update(r.Context(), user.ID, user); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Password changed", "user_id", user.ID)
	writeSuccess(w, http.StatusOK, map[string]string{"message": "password alterada"})
}
