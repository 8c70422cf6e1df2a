package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/edify-labs/edify/internal/config"
)

// Identity is the subset of ID token claims used to provision a user.
type Identity struct {
	Issuer  string
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// DisplayName falls back to the local part of the email when the provider
// sends no name claim.
func (i Identity) DisplayName() string {
	if n := strings.TrimSpace(i.Name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}

// Provider wraps an OIDC provider with OAuth2 configuration and token verification.
type Provider struct {
	verifier     *gooidc.IDTokenVerifier
	oauth2Config oauth2.Config
}

// NewProvider performs OIDC discovery and returns a configured Provider.
func NewProvider(ctx context.Context, cfg *config.Config) (*Provider, error) {
	provider, err := gooidc.NewProvider(ctx, cfg.OIDC.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", cfg.OIDC.Issuer, err)
	}

	return &Provider{
		verifier: provider.Verifier(&gooidc.Config{ClientID: cfg.OIDC.ClientID}),
		oauth2Config: oauth2.Config{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{gooidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// AuthCodeURL generates the authorization URL with PKCE and state.
func (p *Provider) AuthCodeURL(state, codeChallenge string) string {
	return p.oauth2Config.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Exchange trades an authorization code for tokens, verifies the ID token and
// returns the caller's identity.
func (p *Provider) Exchange(ctx context.Context, code, codeVerifier string) (*Identity, error) {
	token, err := p.oauth2Config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id_token verification: %w", err)
	}

	var id Identity
	if err := idToken.Claims(&id); err != nil {
		return nil, fmt.Errorf("id_token claims: %w", err)
	}
	id.Issuer = idToken.Issuer
	if id.Subject == "" {
		id.Subject = idToken.Subject
	}
	return &id, nil
}

// GenerateState returns a cryptographically random state string.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GeneratePKCE returns a PKCE verifier and its S256 challenge.
func GeneratePKCE() (verifier, challenge string, err error) {
	b := make([]byte, 64)
	if _, err = rand.Read(b); err != nil {
		return
	}
	verifier = base64.RawURLEncoding.EncodeToString(b)
	h := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(h[:])
	return
}
