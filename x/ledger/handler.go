package ledger

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/gconf"
	"github.com/iov-one/remit/x"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r remit.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(&DepositMsg{}, DepositHandler{auth: auth, ctrl: ctrl})
	r.Handle(&WithdrawMsg{}, WithdrawHandler{auth: auth, ctrl: ctrl})
	r.Handle(&WithdrawCommissionMsg{}, WithdrawCommissionHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ForwardMsg{}, ForwardHandler{auth: auth, ctrl: ctrl})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(pkg, &Configuration{}, auth, Owner))
}

// RegisterQuery exposes accounts as "/accounts" and payouts as "/payouts".
func RegisterQuery(qr remit.QueryRouter) {
	NewAccountBucket().Register("accounts", qr)
	NewPayoutBucket().Register("payouts", qr)
}

// DepositHandler credits the caller with deposited funds.
type DepositHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ remit.Handler = DepositHandler{}

func (h DepositHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &remit.CheckResult{}, nil
}

func (h DepositHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Deposit(ctx, db, caller, msg.Amount); err != nil {
		return nil, err
	}
	return &remit.DeliverResult{}, nil
}

func (h DepositHandler) validate(ctx remit.Context, tx remit.Tx) (*DepositMsg, remit.Address, error) {
	var msg DepositMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.MustCaller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}

// WithdrawHandler pays the caller from the caller's available balance.
type WithdrawHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ remit.Handler = WithdrawHandler{}

func (h WithdrawHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := hasAvailable(db, h.ctrl, caller, msg.Amount); err != nil {
		return nil, err
	}
	return &remit.CheckResult{}, nil
}

func (h WithdrawHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Withdraw(ctx, db, caller, msg.Amount); err != nil {
		return nil, err
	}
	return &remit.DeliverResult{}, nil
}

func (h WithdrawHandler) validate(ctx remit.Context, tx remit.Tx) (*WithdrawMsg, remit.Address, error) {
	var msg WithdrawMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.MustCaller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}

// WithdrawCommissionHandler pays the commission beneficiary from the
// commission pool.
type WithdrawCommissionHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ remit.Handler = WithdrawCommissionHandler{}

func (h WithdrawCommissionHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	msg, caller, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	pool, err := h.ctrl.CommissionPool(db)
	if err != nil {
		return nil, err
	}
	if msg.Amount > pool {
		return nil, errors.Wrapf(errors.ErrInsufficientFunds, "commission pool %d", pool)
	}
	remit.GetLogger(ctx).Debug("commission withdrawal", "beneficiary", caller)
	return &remit.CheckResult{}, nil
}

func (h WithdrawCommissionHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.WithdrawCommission(ctx, db, caller, msg.Amount); err != nil {
		return nil, err
	}
	return &remit.DeliverResult{}, nil
}

func (h WithdrawCommissionHandler) validate(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*WithdrawCommissionMsg, remit.Address, error) {
	var msg WithdrawCommissionMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, conf.CommissionBeneficiary) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "commission beneficiary required")
	}
	return &msg, conf.CommissionBeneficiary, nil
}

// ForwardHandler pays a remittance from the relay agent's balance to the
// final recipient.
type ForwardHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ remit.Handler = ForwardHandler{}

func (h ForwardHandler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	msg, agent, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := hasAvailable(db, h.ctrl, agent, msg.Amount); err != nil {
		return nil, err
	}
	return &remit.CheckResult{}, nil
}

func (h ForwardHandler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	msg, agent, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Forward(ctx, db, agent, msg.Recipient, msg.Amount); err != nil {
		return nil, err
	}
	return &remit.DeliverResult{}, nil
}

func (h ForwardHandler) validate(ctx remit.Context, tx remit.Tx) (*ForwardMsg, remit.Address, error) {
	var msg ForwardMsg
	if err := remit.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	agent, err := x.MustCaller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, agent, nil
}

func hasAvailable(db remit.ReadOnlyKVStore, ctrl Controller, acct remit.Address, amount uint64) error {
	available, err := ctrl.Balance(db, acct)
	if err != nil {
		return err
	}
	if amount > available {
		return errors.Wrapf(errors.ErrInsufficientFunds, "available %d", available)
	}
	return nil
}
