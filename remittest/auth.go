package remittest

import (
	"context"
	"fmt"

	remit "github.com/iov-one/remit"
)

// Auth is a mock implementing x.Authenticator interface.
//
// It authenticates the referenced caller regardless of the context.
type Auth struct {
	Caller remit.Address
}

func (a *Auth) GetCaller(remit.Context) (remit.Address, bool) {
	return a.Caller, len(a.Caller) != 0
}

func (a *Auth) HasAddress(ctx remit.Context, addr remit.Address) bool {
	return len(a.Caller) != 0 && a.Caller.Equals(addr)
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve the caller.
type CtxAuth struct {
	// Key used to set and retrieve the caller from the context. For
	// convinience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetCaller(ctx remit.Context, caller remit.Address) remit.Context {
	return context.WithValue(ctx, a.Key, caller)
}

func (a *CtxAuth) GetCaller(ctx remit.Context) (remit.Address, bool) {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil, false
	}
	caller, ok := val.(remit.Address)
	if !ok {
		panic(fmt.Sprintf("instead of remit.Address got %T", val))
	}
	return caller, true
}

func (a *CtxAuth) HasAddress(ctx remit.Context, addr remit.Address) bool {
	caller, ok := a.GetCaller(ctx)
	return ok && caller.Equals(addr)
}
