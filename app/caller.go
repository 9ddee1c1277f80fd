package app

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/x"
)

// CallerDecorator puts the caller authenticated by the host into the
// context, so that x.CallerAuth can find it.
type CallerDecorator struct{}

var _ remit.Decorator = CallerDecorator{}

// NewCallerDecorator returns a default caller decorator
func NewCallerDecorator() CallerDecorator {
	return CallerDecorator{}
}

// Check sets the caller before calling down the stack.
func (d CallerDecorator) Check(ctx remit.Context, store remit.KVStore, tx remit.Tx, next remit.Checker) (*remit.CheckResult, error) {
	return next.Check(withCaller(ctx, tx), store, tx)
}

// Deliver sets the caller before calling down the stack.
func (d CallerDecorator) Deliver(ctx remit.Context, store remit.KVStore, tx remit.Tx, next remit.Deliverer) (*remit.DeliverResult, error) {
	return next.Deliver(withCaller(ctx, tx), store, tx)
}

// withCaller adds the caller to the context if the Tx carries one.
func withCaller(ctx remit.Context, tx remit.Tx) remit.Context {
	if ctx == nil {
		return ctx
	}
	if ct, ok := tx.(x.CallerTx); ok {
		if caller := ct.GetCaller(); len(caller) != 0 {
			ctx = remit.WithCaller(ctx, caller)
		}
	}
	return ctx
}
