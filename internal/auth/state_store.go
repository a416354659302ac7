package auth

import (
	"context"
	"fmt"
	"time"

	"personapilot/internal/cache"
	"personapilot/internal/model"
)

const (
	oauthStateKeyPrefix = "oauth_state:"
	oauthStateBytes     = 16

	// OAuthStateExpiry is the default lifetime of an OAuth state value.
	OAuthStateExpiry = 10 * time.Minute
)

// StateStoreInterface defines storage of OAuth anti-forgery state values.
type StateStoreInterface interface {
	Issue(ctx context.Context, provider model.Provider) (string, error)
	Consume(ctx context.Context, provider model.Provider, state string) bool
}

// StateStore keeps OAuth state values in Redis until the callback consumes them.
type StateStore struct {
	cache *cache.Client
	ttl   time.Duration
}

// Ensure StateStore implements StateStoreInterface
var _ StateStoreInterface = (*StateStore)(nil)

// NewStateStore creates a new state store.
func NewStateStore(cache *cache.Client, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = OAuthStateExpiry
	}
	return &StateStore{cache: cache, ttl: ttl}
}

// Issue generates a state value bound to provider. It fails when the value
// cannot be stored, so no flow starts that could never complete.
func (s *StateStore) Issue(ctx context.Context, provider model.Provider) (string, error) {
	state, err := randomHex(oauthStateBytes)
	if err != nil {
		return "", err
	}
	if err := s.cache.SetStrict(ctx, oauthStateKeyPrefix+state, []byte(provider), s.ttl); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// Consume reports whether state was issued for provider and removes it.
// Unknown, reused and expired values all fail, as does an unreachable Redis.
func (s *StateStore) Consume(ctx context.Context, provider model.Provider, state string) bool {
	if state == "" {
		return false
	}
	data, _ := s.cache.Take(ctx, oauthStateKeyPrefix+state)
	return data != nil && model.Provider(data) == provider
}
