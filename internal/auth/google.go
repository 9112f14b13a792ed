package auth

import (
	"context"
	"fmt"

	"github.com/openstax/rope/internal/config"

	"google.golang.org/api/idtoken"
)

// TokenVerifier validates a Google ID token and returns the holder's email.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (string, error)
}

type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(cfg *config.Config) *GoogleVerifier {
	return &GoogleVerifier{clientID: cfg.Google.ClientID}
}

func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, token string) (string, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return "", fmt.Errorf("invalid Google token: %w", err)
	}

	email, ok := payload.Claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("google token has no email claim")
	}
	return email, nil
}
