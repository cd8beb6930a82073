package session

import "golang.org/x/oauth2"

type tokenSource struct {
	store Store
}

// TokenSource adapts store to an oauth2.TokenSource. The store is consulted
// on every call, so a login or logout is visible to the next request.
func TokenSource(store Store) oauth2.TokenSource {
	return tokenSource{store: store}
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	sess := ts.store.Get()
	if !sess.Active() {
		return nil, ErrNoSession
	}
	// No expiry: the service is the only judge of credential validity.
	return &oauth2.Token{AccessToken: sess.Token, TokenType: "Bearer"}, nil
}
