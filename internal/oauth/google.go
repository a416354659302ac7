package oauth

import (
	"golang.org/x/oauth2/endpoints"

	"personapilot/internal/model"
)

// GoogleProfileURL is Google's userinfo endpoint.
const GoogleProfileURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// NewGoogle builds the Google provider.
func NewGoogle(s Settings) Provider {
	if s.Endpoint.AuthURL == "" {
		s.Endpoint = endpoints.Google
	}
	if s.ProfileURL == "" {
		s.ProfileURL = GoogleProfileURL
	}
	return newProvider(model.ProviderGoogle, s, func(body []byte) (*Profile, error) {
		info, err := decodeJSON[googleUserInfo](body)
		if err != nil {
			return nil, err
		}
		return &Profile{ExternalID: info.ID, Email: info.Email, Name: info.Name, AvatarURL: info.Picture}, nil
	})
}
