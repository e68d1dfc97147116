package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

const googleIssuer = "https://accounts.google.com"

// ExternalIdentity is what a verified sign-in token says about its user.
type ExternalIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*ExternalIdentity, error)
}

// GoogleVerifier checks Google ID tokens issued for one client id.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier fetches Google's discovery document and signing keys.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}
	return &GoogleVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (*ExternalIdentity, error) {
	token, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
	}
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("id token claims: %w", err)
	}
	return &ExternalIdentity{
		Subject:       token.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
	}, nil
}
