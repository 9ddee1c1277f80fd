package ticket

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/gconf"
	"github.com/iov-one/remit/x"
	"github.com/iov-one/remit/x/ledger"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r remit.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(&CreateMsg{}, CreateHandler{ctrl: ctrl})
	r.Handle(&FundMsg{}, FundHandler{auth: auth, ctrl: ctrl})
	r.Handle(&FundNewMsg{}, FundNewHandler{auth: auth, ctrl: ctrl})
	r.Handle(&CancelMsg{}, CancelHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ReleaseMsg{}, ReleaseHandler{ctrl: ctrl})
	r.Handle(&ExtendDeadlineMsg{}, ExtendDeadlineHandler{auth: auth, ctrl: ctrl})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(pkg, &Configuration{}, auth, ledger.Owner))
}

// RegisterQuery will register tickets as "/tickets", indexed by
// "/tickets/depositor" and "/tickets/beneficiary".
func RegisterQuery(qr remit.QueryRouter) {
	NewBucket().Register("tickets", qr)
}

// check runs the operation on a cache of the store that is always
// discarded.
func check(db remit.KVStore, fn func(remit.KVStore) error) (*remit.CheckResult, error) {
	cache, ok := db.(remit.CacheableKVStore)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "%T store cannot be cache wrapped", db)
	}
	tmp := cache.CacheWrap()
	defer tmp.Discard()
	if err := fn(tmp); err != nil {
		return nil, err
	}
	return &remit.CheckResult{}, nil
}

// CreateHandler opens a ticket.
type CreateHandler struct {
	ctrl *Controller
}

var _ remit.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	return check(db, func(db remit.KVStore) error {
		_, err := h.deliver(ctx, db, tx)
		return err
	})
}

func (h CreateHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	id, err := h.deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &remit.DeliverResult{Data: id}, nil
}

func (h CreateHandler) deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) ([]byte, error) {
	var msg CreateMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.Create(ctx, db, msg.Beneficiary, msg.Digest1, msg.Digest2, msg.Memo)
}

// FundHandler locks the caller's funds in a ticket.
type FundHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ remit.Handler = FundHandler{}

func (h FundHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	return check(db, func(db remit.KVStore) error {
		return h.deliver(ctx, db, tx)
	})
}

func (h FundHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	if err := h.deliver(ctx, db, tx); err != nil {
		return nil, err
	}
	return &remit.DeliverResult{}, nil
}

func (h FundHandler) deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) error {
	var msg FundMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return errors.Wrap(err, "load msg")
	}
	caller, err := x.MustCaller(ctx, h.auth)
	if err != nil {
		return err
	}
	return h.ctrl.Fund(ctx, db, msg.TicketID, msg.Amount, msg.DeadlineOffset, caller)
}

// FundNewHandler creates and funds a ticket.
type FundNewHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ remit.Handler = FundNewHandler{}

func (h FundNewHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	return check(db, func(db remit.KVStore) error {
		_, err := h.deliver(ctx, db, tx)
		return err
	})
}

func (h FundNewHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	id, err := h.deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &remit.DeliverResult{Data: id}, nil
}

func (h FundNewHandler) deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) ([]byte, error) {
	var msg FundNewMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.MustCaller(ctx, h.auth)
	if err != nil {
		return nil, err
	}
	return h.ctrl.FundNew(ctx, db, msg.Beneficiary, msg.Digest1, msg.Digest2, msg.Memo,
		msg.Amount, msg.DeadlineOffset, caller)
}

// CancelHandler refunds a ticket to its depositor.
type CancelHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ remit.Handler = CancelHandler{}

func (h CancelHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	return check(db, func(db remit.KVStore) error {
		return h.deliver(ctx, db, tx)
	})
}

func (h CancelHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	if err := h.deliver(ctx, db, tx); err != nil {
		return nil, err
	}
	return &remit.DeliverResult{}, nil
}

func (h CancelHandler) deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) error {
	var msg CancelMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return errors.Wrap(err, "load msg")
	}
	caller, err := x.MustCaller(ctx, h.auth)
	if err != nil {
		return err
	}
	return h.ctrl.Cancel(ctx, db, msg.TicketID, caller)
}

// ReleaseHandler pays a ticket to its beneficiary. The caller does not
// have to be authenticated, knowing both secrets is enough.
type ReleaseHandler struct {
	ctrl *Controller
}

var _ remit.Handler = ReleaseHandler{}

func (h ReleaseHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	return check(db, func(db remit.KVStore) error {
		_, err := h.deliver(ctx, db, tx)
		return err
	})
}

func (h ReleaseHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	t, err := h.deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &remit.DeliverResult{Data: t.ID()}, nil
}

func (h ReleaseHandler) deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*Ticket, error) {
	var msg ReleaseMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.Release(ctx, db, msg.TicketID, msg.Secret1, msg.Secret2)
}

// ExtendDeadlineHandler moves the deadline of a funded ticket.
type ExtendDeadlineHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ remit.Handler = ExtendDeadlineHandler{}

func (h ExtendDeadlineHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	return check(db, func(db remit.KVStore) error {
		return h.deliver(ctx, db, tx)
	})
}

func (h ExtendDeadlineHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	if err := h.deliver(ctx, db, tx); err != nil {
		return nil, err
	}
	return &remit.DeliverResult{}, nil
}

func (h ExtendDeadlineHandler) deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) error {
	var msg ExtendDeadlineMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return errors.Wrap(err, "load msg")
	}
	caller, err := x.MustCaller(ctx, h.auth)
	if err != nil {
		return err
	}
	return h.ctrl.ExtendDeadline(ctx, db, msg.TicketID, msg.DeadlineOffset, caller)
}
