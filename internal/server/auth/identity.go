// Package auth holds the caller identity model and JWT verification for the
// server. Token issuance belongs to the external identity provider; this
// package only validates tokens and represents who is calling.
package auth

// Identity is the caller identity attached to a request. It is either
// anonymous or authenticated with a user id; use the constructors below
// instead of building the struct directly.
type Identity struct {
	id            string
	authenticated bool
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns the identity of a caller with the given user id.
func Authenticated(id string) Identity {
	return Identity{id: id, authenticated: true}
}

// UserID returns the caller's user id and true when authenticated.
func (i Identity) UserID() (string, bool) {
	return i.id, i.authenticated
}

// IsAnonymous reports whether the caller carries no identity.
func (i Identity) IsAnonymous() bool {
	return !i.authenticated
}
