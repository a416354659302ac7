package oauth

import (
	"golang.org/x/oauth2/endpoints"

	"personapilot/internal/model"
)

// LinkedInProfileURL is LinkedIn's OpenID Connect userinfo endpoint.
const LinkedInProfileURL = "https://api.linkedin.com/v2/userinfo"

type linkedInUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// NewLinkedIn builds the LinkedIn provider.
func NewLinkedIn(s Settings) Provider {
	if s.Endpoint.AuthURL == "" {
		s.Endpoint = endpoints.LinkedIn
	}
	if s.ProfileURL == "" {
		s.ProfileURL = LinkedInProfileURL
	}
	return newProvider(model.ProviderLinkedIn, s, func(body []byte) (*Profile, error) {
		info, err := decodeJSON[linkedInUserInfo](body)
		if err != nil {
			return nil, err
		}
		return &Profile{ExternalID: info.Sub, Email: info.Email, Name: info.Name, AvatarURL: info.Picture}, nil
	})
}
