package http

import (
	"context"
	"net/http"
	"strings"

	"financas/internal/core"
)

type contextKey string

const userContextKey contextKey = "user"

// currentUser returns the authenticated account stored by requireAuth.
func currentUser(ctx context.Context) *core.User {
	u, _ := ctx.Value(userContextKey).(*core.User)
	return u
}

// requireAuth verifies the Bearer token, loads the account and rejects
// inactive ones. The account rides the request context from here on.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			s.writeError(w, r, core.ErrUnauthorized)
			return
		}

		userID, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			s.writeError(w, r, core.ErrUnauthorized)
			return
		}

		user, err := s.store.Users().GetByID(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, core.ErrUnauthorized)
			return
		}
		if !user.IsActive {
			s.writeError(w, r, core.ErrInactiveUser)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}
