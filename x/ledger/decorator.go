package ledger

import (
	"context"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/x/utils"
)

type contextKey int

const contextKeyPending contextKey = iota

// pendingPayout is a payout recorded by the controller but not yet handed
// to the payer.
type pendingPayout struct {
	kind string
	Payment
}

type pendingPayouts struct {
	list []pendingPayout
}

func withPending(ctx remit.Context) (remit.Context, *pendingPayouts) {
	q := &pendingPayouts{}
	return context.WithValue(ctx, contextKeyPending, q), q
}

func pendingFrom(ctx remit.Context) *pendingPayouts {
	q, _ := ctx.Value(contextKeyPending).(*pendingPayouts)
	return q
}

func (q *pendingPayouts) add(kind string, to remit.Address, amount uint64) {
	q.list = append(q.list, pendingPayout{
		kind:    kind,
		Payment: Payment{To: to.Clone(), Amount: amount},
	})
}

// flush pays all queued payouts in order. It stops at the first refused
// payout and returns the payments made until then.
func (q *pendingPayouts) flush(ctx remit.Context, payer Payer) ([]Payment, error) {
	var paid []Payment
	for _, p := range q.list {
		if err := pay(ctx, payer, p.kind, p.To, p.Amount); err != nil {
			return paid, err
		}
		paid = append(paid, p.Payment)
	}
	q.list = nil
	return paid, nil
}

// PayoutDecorator holds back the payouts of a transaction until the
// handler succeeded and all of its changes are staged in a cache. Only then
// are the payouts handed to the payer, and the cache is written once the
// payer accepted all of them. A refused payout discards the changes.
//
// Place it outside of any Savepoint so that the staged changes are final
// when the payer is called.
type PayoutDecorator struct {
	payer Payer
}

var _ remit.Decorator = PayoutDecorator{}

// NewPayoutDecorator returns a decorator paying through given payer.
func NewPayoutDecorator(payer Payer) PayoutDecorator {
	if payer == nil {
		payer = NopPayer{}
	}
	return PayoutDecorator{payer: payer}
}

// Check never pays anything.
func (d PayoutDecorator) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx, next remit.Checker) (*remit.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (d PayoutDecorator) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx, next remit.Deliverer) (*remit.DeliverResult, error) {
	ctx, queue := withPending(ctx)
	var (
		res  *remit.DeliverResult
		paid []Payment
	)
	err := utils.Atomic(db, func(db remit.KVStore) error {
		var err error
		if res, err = next.Deliver(ctx, db, tx); err != nil {
			return err
		}
		paid, err = queue.flush(ctx, d.payer)
		return err
	})
	if err != nil {
		if len(paid) > 0 {
			// The host moved funds that the ledger still holds.
			remit.GetLogger(ctx).Error("payouts made for a failed transaction",
				"path", remit.GetPath(tx), "payments", paid, "err", err)
		}
		return nil, err
	}
	return res, nil
}
