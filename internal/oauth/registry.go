package oauth

import "personapilot/internal/model"

// Registry holds the providers that are configured.
type Registry map[model.Provider]Provider

// NewRegistry indexes providers by name, skipping nil entries.
func NewRegistry(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		if p != nil {
			r[p.Name()] = p
		}
	}
	return r
}

// Get returns the provider registered under name.
func (r Registry) Get(name model.Provider) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}
