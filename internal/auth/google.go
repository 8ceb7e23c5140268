package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"financas/internal/core"
)

// GoogleProfile is what a verified Google ID token tells us about the user.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier validates Google ID tokens against the configured OAuth
// client id.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

// Verify validates the ID token and extracts the profile claims.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("%w: google login not configured", core.ErrUnauthorized)
	}

	payload, err := idtoken.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}

	profile := &GoogleProfile{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		profile.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		profile.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		profile.Picture = picture
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", core.ErrUnauthorized)
	}
	return profile, nil
}
