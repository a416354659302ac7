package model

import "errors"

// Provider identifies an external identity provider.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderLinkedIn Provider = "linkedin"
)

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	return p == ProviderGoogle || p == ProviderLinkedIn
}

// CredentialKind reports which authentication paths a user has.
type CredentialKind string

const (
	CredentialNone          CredentialKind = ""
	CredentialPassword      CredentialKind = "password"
	CredentialOAuth         CredentialKind = "oauth"
	CredentialPasswordOAuth CredentialKind = "password+oauth"
)

// ErrNoCredentials is returned when a user would have no way to authenticate.
var ErrNoCredentials = errors.New("user must have a password or an oauth identity")

// Credentials is the set of authentication paths of a user: a password hash,
// one or more OAuth identities, or both. Build it with NewPasswordCredentials
// or NewOAuthCredentials and extend it with WithPassword / WithOAuth.
type Credentials struct {
	PasswordHash *string `json:"-" gorm:"column:password_hash;size:255"`
	GoogleID     *string `json:"googleId,omitempty" gorm:"column:google_id;size:255;uniqueIndex"`
	LinkedInID   *string `json:"linkedinId,omitempty" gorm:"column:linkedin_id;size:255;uniqueIndex"`
}

// NewPasswordCredentials returns credentials for a password-only account.
func NewPasswordCredentials(hash string) (Credentials, error) {
	return Credentials{}.WithPassword(hash)
}

// NewOAuthCredentials returns credentials for an OAuth-only account.
func NewOAuthCredentials(provider Provider, externalID string) (Credentials, error) {
	return Credentials{}.WithOAuth(provider, externalID)
}

// WithPassword returns a copy with the password hash replaced.
func (c Credentials) WithPassword(hash string) (Credentials, error) {
	if hash == "" {
		return c, errors.New("password hash is empty")
	}
	c.PasswordHash = &hash
	return c, nil
}

// WithOAuth returns a copy linked to the given provider identity.
func (c Credentials) WithOAuth(provider Provider, externalID string) (Credentials, error) {
	if externalID == "" {
		return c, errors.New("external id is empty")
	}
	switch provider {
	case ProviderGoogle:
		c.GoogleID = &externalID
	case ProviderLinkedIn:
		c.LinkedInID = &externalID
	default:
		return c, errors.New("unsupported provider " + string(provider))
	}
	return c, nil
}

// HasPassword reports whether a password hash is set.
func (c Credentials) HasPassword() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}

// OAuthID returns the external id for provider, or "" when not linked.
func (c Credentials) OAuthID(provider Provider) string {
	var id *string
	switch provider {
	case ProviderGoogle:
		id = c.GoogleID
	case ProviderLinkedIn:
		id = c.LinkedInID
	}
	if id == nil {
		return ""
	}
	return *id
}

// HasOAuth reports whether at least one provider identity is linked.
func (c Credentials) HasOAuth() bool {
	return c.OAuthID(ProviderGoogle) != "" || c.OAuthID(ProviderLinkedIn) != ""
}

// Kind classifies the credentials.
func (c Credentials) Kind() CredentialKind {
	switch {
	case c.HasPassword() && c.HasOAuth():
		return CredentialPasswordOAuth
	case c.HasPassword():
		return CredentialPassword
	case c.HasOAuth():
		return CredentialOAuth
	default:
		return CredentialNone
	}
}

// Validate rejects credentials with no authentication path.
func (c Credentials) Validate() error {
	if c.Kind() == CredentialNone {
		return ErrNoCredentials
	}
	return nil
}
