package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

var (
	ErrIdentityTokenInvalid = errors.New("identity token invalid")
	ErrFederatedDisabled    = errors.New("federated sign-in is not configured")
)

const ProviderGoogle = "google"

// FederatedInput es lo que envía el cliente tras el login con el proveedor.
type FederatedInput struct {
	Provider string `json:"provider" binding:"required"`
	IDToken  string `json:"id_token" binding:"required"`
}

// IdentityTokenVerifier valida el id token del proveedor y devuelve la identidad firmada.
type IdentityTokenVerifier interface {
	Verify(ctx context.Context, provider, idToken string) (OAuthInput, error)
}

type payloadValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

type googleTokenVerifier struct {
	validator payloadValidator
	clientID  string
}

// NewGoogleTokenVerifier comprueba firma, audiencia y expiración contra las claves públicas de Google.
func NewGoogleTokenVerifier(ctx context.Context, clientID string) (IdentityTokenVerifier, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating google token validator: %w", err)
	}
	return &googleTokenVerifier{validator: v, clientID: clientID}, nil
}

func (g *googleTokenVerifier) Verify(ctx context.Context, provider, idToken string) (OAuthInput, error) {
	if strings.ToLower(strings.TrimSpace(provider)) != ProviderGoogle {
		return OAuthInput{}, ErrUnsupportedAuthFlow
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return OAuthInput{}, ErrIdentityTokenInvalid
	}
	payload, err := g.validator.Validate(ctx, idToken, g.clientID)
	if err != nil {
		return OAuthInput{}, fmt.Errorf("%w: %v", ErrIdentityTokenInvalid, err)
	}
	switch payload.Issuer {
	case "accounts.google.com", "https://accounts.google.com":
	default:
		return OAuthInput{}, fmt.Errorf("%w: unexpected issuer %q", ErrIdentityTokenInvalid, payload.Issuer)
	}
	if strings.TrimSpace(payload.Subject) == "" {
		return OAuthInput{}, ErrIdentityTokenInvalid
	}
	return OAuthInput{
		Provider:      ProviderGoogle,
		Subject:       payload.Subject,
		Email:         claimString(payload.Claims, "email"),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		DisplayName:   claimString(payload.Claims, "name"),
		PhotoURL:      claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}

// claimBool acepta bool o "true"; algunos emisores serializan email_verified como string.
func claimBool(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

type disabledTokenVerifier struct{}

// NewDisabledTokenVerifier rechaza todo ingreso federado.
func NewDisabledTokenVerifier() IdentityTokenVerifier { return disabledTokenVerifier{} }

func (disabledTokenVerifier) Verify(context.Context, string, string) (OAuthInput, error) {
	return OAuthInput{}, ErrFederatedDisabled
}
