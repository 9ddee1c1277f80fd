package remittest

import remit "github.com/iov-one/remit"

// Decorator is a mock remit.Decorator. Every call is counted and the
// caller found in the context, if any, is recorded. Set CheckErr or
// DeliverErr to stop the chain with an error instead of calling the next
// handler.
type Decorator struct {
	CheckErr   error
	DeliverErr error

	checkCall   int
	deliverCall int
	callers     []remit.Address
}

var _ remit.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx, next remit.Checker) (*remit.CheckResult, error) {
	d.checkCall++
	d.observe(ctx)
	if d.CheckErr != nil {
		return &remit.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx, next remit.Deliverer) (*remit.DeliverResult, error) {
	d.deliverCall++
	d.observe(ctx)
	if d.DeliverErr != nil {
		return &remit.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) observe(ctx remit.Context) {
	if caller, ok := remit.GetCaller(ctx); ok {
		d.callers = append(d.callers, caller)
	}
}

func (d *Decorator) CheckCallCount() int   { return d.checkCall }
func (d *Decorator) DeliverCallCount() int { return d.deliverCall }

// Callers returns the callers seen in the context, in call order. Calls
// without a caller are skipped.
func (d *Decorator) Callers() []remit.Address {
	return d.callers
}

// Decorate wraps the handler with the decorator.
func Decorate(h remit.Handler, d remit.Decorator) remit.Handler {
	return decorated{handler: h, decorator: d}
}

type decorated struct {
	handler   remit.Handler
	decorator remit.Decorator
}

func (d decorated) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	return d.decorator.Check(ctx, db, tx, d.handler)
}

func (d decorated) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	return d.decorator.Deliver(ctx, db, tx, d.handler)
}
