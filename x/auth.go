package x

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system.
type Authenticator interface {
	// GetCaller returns the authenticated identity of the account that
	// submitted the request.
	GetCaller(remit.Context) (remit.Address, bool)
	// HasAddress checks if given address was authenticated.
	HasAddress(remit.Context, remit.Address) bool
}

// CallerAuth authenticates the caller provided by the host. The host
// authentication primitive is trusted, the caller is read from the context
// as set by remit.WithCaller.
type CallerAuth struct{}

var _ Authenticator = CallerAuth{}

// GetCaller returns the caller set in the context.
func (CallerAuth) GetCaller(ctx remit.Context) (remit.Address, bool) {
	caller, ok := remit.GetCaller(ctx)
	if !ok || len(caller) == 0 {
		return nil, false
	}
	return caller, true
}

// HasAddress returns true if given address is the caller.
func (a CallerAuth) HasAddress(ctx remit.Context, addr remit.Address) bool {
	caller, ok := a.GetCaller(ctx)
	return ok && caller.Equals(addr)
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetCaller returns the caller of the first Authenticator that knows it.
func (m MultiAuth) GetCaller(ctx remit.Context) (remit.Address, bool) {
	for _, impl := range m.impls {
		if caller, ok := impl.GetCaller(ctx); ok {
			return caller, true
		}
	}
	return nil, false
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx remit.Context, addr remit.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MustCaller returns the authenticated caller or an unauthorized error.
func MustCaller(ctx remit.Context, auth Authenticator) (remit.Address, error) {
	caller, ok := auth.GetCaller(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "caller not authenticated")
	}
	return caller, nil
}
