package app

import (
	"reflect"

	remit "github.com/iov-one/remit"
)

// Decorators is an ordered stack of decorators waiting for the handler that
// terminates it.
type Decorators struct {
	chain []remit.Decorator
}

/*
ChainDecorators starts a stack. Decorators run in the given order, the
first one sees the transaction first. Nil decorators are skipped, so
optional decorators can be passed unconditionally.

  app.ChainDecorators(
    app.NewCallerDecorator(),
    utils.NewLogging(),
    utils.NewRecovery(),
    utils.NewSavepoint().OnDeliver(),
  ).WithHandler(router)
*/
func ChainDecorators(chain ...remit.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new stack with the decorators appended. The receiver is
// not modified.
func (d Decorators) Chain(chain ...remit.Decorator) Decorators {
	next := make([]remit.Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, dec := range chain {
		if !isNilDecorator(dec) {
			next = append(next, dec)
		}
	}
	return Decorators{chain: next}
}

func isNilDecorator(d remit.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler terminates the stack with h and returns it as a single
// handler.
func (d Decorators) WithHandler(h remit.Handler) remit.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{decorator: d.chain[i], next: h}
	}
	return h
}

// step runs one decorator around the rest of the stack.
type step struct {
	decorator remit.Decorator
	next      remit.Handler
}

var _ remit.Handler = step{}

func (s step) Check(ctx remit.Context, store remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	return s.decorator.Check(ctx, store, tx, s.next)
}

func (s step) Deliver(ctx remit.Context, store remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	return s.decorator.Deliver(ctx, store, tx, s.next)
}
