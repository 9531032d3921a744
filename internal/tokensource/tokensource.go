// Package tokensource mints and caches bearer tokens for the upstream
// Vertex AI call, either from a GCP service-account key via the OAuth2
// JWT-bearer flow, or a fixed static token supplied directly by the
// operator.
package tokensource

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

// CloudPlatformScope is the OAuth2 scope Vertex AI calls require.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// ServiceAccountKey is the subset of a GCP service-account JSON key file
// the JWT-bearer flow needs to mint access tokens.
type ServiceAccountKey struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
	TokenURI    string `json:"token_uri"`
}

// ParseServiceAccountKey parses a service-account JSON key file's contents.
func ParseServiceAccountKey(data []byte) (ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return ServiceAccountKey{}, fmt.Errorf("parsing service account key: %w", err)
	}
	if key.PrivateKey == "" || key.ClientEmail == "" {
		return ServiceAccountKey{}, fmt.Errorf("service account key missing private_key or client_email")
	}
	return key, nil
}

// TokenSource supplies a bearer token, caching and refreshing it as needed.
// Both the GCP and static constructors return this same type so callers
// (internal/dispatcher) depend on one narrow interface regardless of auth
// strategy.
type TokenSource struct {
	inner oauth2.TokenSource
}

// Token returns a valid bearer token, refreshing it first if it has expired
// or is within its refresh margin. oauth2.ReuseTokenSource performs that
// check internally so concurrent callers never trigger more than one
// in-flight refresh.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	tok, err := ts.inner.Token()
	if err != nil {
		return "", fmt.Errorf("acquiring bearer token: %w", err)
	}
	return tok.AccessToken, nil
}

// NewGCP builds a TokenSource that mints Vertex AI access tokens from a
// service-account key via the OAuth2 JWT-bearer grant. The token endpoint
// defaults to Google's standard OAuth2 token endpoint when the key doesn't
// specify one.
func NewGCP(key ServiceAccountKey) (*TokenSource, error) {
	tokenURI := key.TokenURI
	if tokenURI == "" {
		tokenURI = google.JWTTokenURL
	}

	cfg := &jwt.Config{
		Email:      key.ClientEmail,
		PrivateKey: []byte(key.PrivateKey),
		TokenURL:   tokenURI,
		Scopes:     []string{CloudPlatformScope},
	}

	return &TokenSource{inner: oauth2.ReuseTokenSource(nil, cfg.TokenSource(context.Background()))}, nil
}

// NewStatic builds a TokenSource that always returns the given fixed bearer
// token, for operators who mint and rotate tokens outside the proxy.
func NewStatic(token string) *TokenSource {
	return &TokenSource{inner: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})}
}
