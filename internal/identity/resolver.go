// Package identity decides, per outgoing request, whether the caller
// is a guest or an authenticated user, and derives the request headers
// accordingly.
package identity

import (
	"net/http"
	"sync"
)

// Request headers the resolver owns.
const (
	headerAuthorization  = "Authorization"
	headerGuestCartID    = "X-Guest-Cart-Id"
	headerAcceptLanguage = "Accept-Language"
)

// CredentialSource supplies the stored session token and the durable
// guest cart identifier. *store.ClientStore satisfies it.
type CredentialSource interface {
	Token() (string, bool)
	GuestCartID() (string, error)
}

// Resolver derives identity and locale headers for every outgoing
// cart-related request. Token and language are read at request time,
// not at construction time, so a login or a language switch takes
// effect on the very next request.
type Resolver struct {
	creds CredentialSource

	mu       sync.RWMutex
	language string
}

// NewResolver creates a resolver reading credentials from creds.
// language is the initial Accept-Language value (ISO 639-1).
func NewResolver(creds CredentialSource, language string) *Resolver {
	return &Resolver{creds: creds, language: language}
}

// Language returns the currently active request language.
func (r *Resolver) Language() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.language
}

// SetLanguage switches the language attached to subsequent requests.
func (r *Resolver) SetLanguage(lang string) {
	r.mu.Lock()
	r.language = lang
	r.mu.Unlock()
}

// Authenticated reports whether a bearer token is currently stored.
func (r *Resolver) Authenticated() bool {
	_, ok := r.creds.Token()
	return ok
}

// Apply sets the identity and locale headers on h: exactly one of
// Authorization or X-Guest-Cart-Id, plus Accept-Language. Called once
// per request immediately before dispatch.
func (r *Resolver) Apply(h http.Header) error {
	h.Set(headerAcceptLanguage, r.Language())

	if token, ok := r.creds.Token(); ok {
		h.Set(headerAuthorization, "Bearer "+token)
		h.Del(headerGuestCartID)
		return nil
	}

	guestID, err := r.creds.GuestCartID()
	if err != nil {
		return err
	}
	h.Set(headerGuestCartID, guestID)
	h.Del(headerAuthorization)
	return nil
}
