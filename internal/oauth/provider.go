package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"personapilot/internal/model"
)

const maxProfileBytes = 1 << 20

// DefaultScopes are requested from every provider.
var DefaultScopes = []string{"openid", "profile", "email"}

// Profile holds the identity claims returned by a provider.
type Profile struct {
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
}

// Provider is one external identity provider.
type Provider interface {
	Name() model.Provider
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// Settings configures a provider. Endpoint and ProfileURL default per provider.
type Settings struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Endpoint     oauth2.Endpoint
	ProfileURL   string
	Scopes       []string
	Timeout      time.Duration
}

type profileDecoder func(body []byte) (*Profile, error)

type provider struct {
	name       model.Provider
	config     *oauth2.Config
	profileURL string
	client     *http.Client
	decode     profileDecoder
}

func newProvider(name model.Provider, s Settings, decode profileDecoder) *provider {
	scopes := s.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &provider{
		name: name,
		config: &oauth2.Config{
			ClientID:     s.ClientID,
			ClientSecret: s.ClientSecret,
			RedirectURL:  s.CallbackURL,
			Endpoint:     s.Endpoint,
			Scopes:       scopes,
		},
		profileURL: s.ProfileURL,
		client:     &http.Client{Timeout: timeout},
		decode:     decode,
	}
}

func (p *provider) Name() model.Provider {
	return p.name
}

func (p *provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a provider access token.
func (p *provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(p.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%s: exchange code: %w", p.name, err)
	}
	return token, nil
}

// FetchProfile reads the authenticated user's identity claims.
func (p *provider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build profile request: %w", p.name, err)
	}

	resp, err := p.config.Client(p.withClient(ctx), token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch profile: %w", p.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read profile: %w", p.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Provider: p.name, StatusCode: resp.StatusCode, Body: string(body)}
	}

	profile, err := p.decode(body)
	if err != nil {
		return nil, fmt.Errorf("%s: decode profile: %w", p.name, err)
	}
	if profile.ExternalID == "" || profile.Email == "" {
		return nil, fmt.Errorf("%s: profile is missing id or email", p.name)
	}
	profile.Email = model.NormalizeEmail(profile.Email)
	return profile, nil
}

func (p *provider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.client)
}

// UpstreamError carries a non-2xx provider response for server-side logging.
type UpstreamError struct {
	Provider   model.Provider
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: profile request failed with status %d", e.Provider, e.StatusCode)
}

func decodeJSON[T any](body []byte) (T, error) {
	var v T
	err := json.Unmarshal(body, &v)
	return v, err
}
