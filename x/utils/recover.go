package utils

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
)

// Recovery converts a panic of any handler down the chain into an
// ErrPanic error. The panic is logged together with the transaction path.
type Recovery struct{}

var _ remit.Decorator = Recovery{}

// NewRecovery returns a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx remit.Context, store remit.KVStore, tx remit.Tx, next remit.Checker) (_ *remit.CheckResult, err error) {
	defer recovered(ctx, tx, &err)
	return next.Check(ctx, store, tx)
}

func (Recovery) Deliver(ctx remit.Context, store remit.KVStore, tx remit.Tx, next remit.Deliverer) (_ *remit.DeliverResult, err error) {
	defer recovered(ctx, tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recovered must be called directly by a deferred statement.
func recovered(ctx remit.Context, tx remit.Tx, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = errors.Wrapf(errors.ErrPanic, "%v", r)
	remit.GetLogger(ctx).Error("transaction panic", "path", remit.GetPath(tx), "panic", r)
}
