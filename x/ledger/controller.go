package ledger

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/orm"
	"github.com/iov-one/remit/x/utils"
)

// Controller moves funds between accounts, the commission pool and the
// host. A method that fails leaves a cacheable store unchanged.
type Controller interface {
	// Deposit credits funds received from the host to the account.
	Deposit(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error
	// Withdraw pays funds from the available balance to the account owner.
	Withdraw(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error
	// Balance returns the available balance. Unknown account has zero
	// balance.
	Balance(db remit.ReadOnlyKVStore, acct remit.Address) (uint64, error)
	// Account returns both balances of the account.
	Account(db remit.ReadOnlyKVStore, acct remit.Address) (*Account, error)

	// Reserve moves funds from available to reserved.
	Reserve(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error
	// ReleaseReservation moves funds from reserved back to available.
	ReleaseReservation(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error
	// Claim consumes reserved funds. The caller must credit them
	// elsewhere within the same transaction.
	Claim(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error
	// Credit adds claimed funds to the available balance.
	Credit(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error

	// CommissionPoolAdd adds claimed funds to the commission pool.
	CommissionPoolAdd(ctx remit.Context, db remit.KVStore, amount uint64) error
	// CommissionPool returns the commission pool balance.
	CommissionPool(db remit.ReadOnlyKVStore) (uint64, error)
	// WithdrawCommission pays from the commission pool to the commission
	// beneficiary, which must be the caller.
	WithdrawCommission(ctx remit.Context, db remit.KVStore, caller remit.Address, amount uint64) error

	// Forward pays funds from the agent's available balance to the final
	// recipient.
	Forward(ctx remit.Context, db remit.KVStore, agent, recipient remit.Address, amount uint64) error

	// Audit sums all balances and checks them against the flows totals.
	Audit(db remit.ReadOnlyKVStore) (*Audit, error)
}

// BaseController is the Controller implementation backed by the store.
type BaseController struct {
	accounts orm.ModelBucket
	pool     orm.ModelBucket
	flows    orm.ModelBucket
	payouts  orm.ModelBucket
	payoutID orm.Sequence
	payer    Payer
}

var _ Controller = (*BaseController)(nil)

// NewController returns a controller that pays out through given payer.
func NewController(payer Payer) *BaseController {
	if payer == nil {
		payer = NopPayer{}
	}
	return &BaseController{
		accounts: NewAccountBucket(),
		pool:     NewPoolBucket(),
		flows:    NewFlowsBucket(),
		payouts:  NewPayoutBucket(),
		payoutID: orm.NewSequence("payout", "id"),
		payer:    payer,
	}
}

func (c *BaseController) Deposit(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error {
	return utils.Atomic(db, func(db remit.KVStore) error {
		return c.deposit(ctx, db, acct, amount)
	})
}

func (c *BaseController) deposit(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	flows, err := c.loadFlows(db)
	if err != nil {
		return err
	}
	if flows.Deposited, err = add(flows.Deposited, amount); err != nil {
		return errors.Wrap(err, "total deposited")
	}
	a, err := c.loadAccount(db, acct)
	if err != nil {
		return err
	}
	if a.Available, err = add(a.Available, amount); err != nil {
		return errors.Wrap(err, "available balance")
	}
	if err := c.saveAccount(db, acct, a); err != nil {
		return err
	}
	if err := c.flows.Put(db, flowsKey, flows); err != nil {
		return errors.Wrap(err, "save flows")
	}
	remit.GetLogger(ctx).Debug("deposit", "account", acct, "amount", amount)
	return nil
}

func (c *BaseController) Withdraw(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error {
	return utils.Atomic(db, func(db remit.KVStore) error {
		return c.withdraw(ctx, db, acct, amount)
	})
}

func (c *BaseController) withdraw(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	a, err := c.loadAccount(db, acct)
	if err != nil {
		return err
	}
	if amount > a.Available {
		return errors.Wrapf(errors.ErrInsufficientFunds, "available %d, withdraw %d", a.Available, amount)
	}
	a.Available -= amount
	if err := c.saveAccount(db, acct, a); err != nil {
		return err
	}
	return c.payout(ctx, db, PayoutWithdraw, acct, acct, amount)
}

func (c *BaseController) Balance(db remit.ReadOnlyKVStore, acct remit.Address) (uint64, error) {
	a, err := c.Account(db, acct)
	if err != nil {
		return 0, err
	}
	return a.Available, nil
}

func (c *BaseController) Account(db remit.ReadOnlyKVStore, acct remit.Address) (*Account, error) {
	if err := acct.Validate(); err != nil {
		return nil, errors.Wrap(err, "account address")
	}
	return c.loadAccount(db, acct)
}

func (c *BaseController) Reserve(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	a, err := c.loadAccount(db, acct)
	if err != nil {
		return err
	}
	if amount > a.Available {
		return errors.Wrapf(errors.ErrInsufficientFunds, "available %d, reserve %d", a.Available, amount)
	}
	a.Available -= amount
	a.Reserved += amount
	return c.saveAccount(db, acct, a)
}

func (c *BaseController) ReleaseReservation(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	a, err := c.loadAccount(db, acct)
	if err != nil {
		return err
	}
	if amount > a.Reserved {
		return errors.Wrapf(errors.ErrState, "reserved %d, release %d", a.Reserved, amount)
	}
	a.Reserved -= amount
	a.Available += amount
	return c.saveAccount(db, acct, a)
}

func (c *BaseController) Claim(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	a, err := c.loadAccount(db, acct)
	if err != nil {
		return err
	}
	if amount > a.Reserved {
		return errors.Wrapf(errors.ErrState, "reserved %d, claim %d", a.Reserved, amount)
	}
	a.Reserved -= amount
	return c.saveAccount(db, acct, a)
}

func (c *BaseController) Credit(ctx remit.Context, db remit.KVStore, acct remit.Address, amount uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	a, err := c.loadAccount(db, acct)
	if err != nil {
		return err
	}
	if a.Available, err = add(a.Available, amount); err != nil {
		return errors.Wrap(err, "available balance")
	}
	return c.saveAccount(db, acct, a)
}

func (c *BaseController) CommissionPoolAdd(ctx remit.Context, db remit.KVStore, amount uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	p, err := c.loadPool(db)
	if err != nil {
		return err
	}
	if p.Commission, err = add(p.Commission, amount); err != nil {
		return errors.Wrap(err, "commission pool")
	}
	if err := c.pool.Put(db, poolKey, p); err != nil {
		return errors.Wrap(err, "save commission pool")
	}
	return nil
}

func (c *BaseController) CommissionPool(db remit.ReadOnlyKVStore) (uint64, error) {
	p, err := c.loadPool(db)
	if err != nil {
		return 0, err
	}
	return p.Commission, nil
}

func (c *BaseController) WithdrawCommission(ctx remit.Context, db remit.KVStore, caller remit.Address, amount uint64) error {
	return utils.Atomic(db, func(db remit.KVStore) error {
		return c.withdrawCommission(ctx, db, caller, amount)
	})
}

func (c *BaseController) withdrawCommission(ctx remit.Context, db remit.KVStore, caller remit.Address, amount uint64) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	if !conf.CommissionBeneficiary.Equals(caller) {
		return errors.Wrap(errors.ErrUnauthorized, "only the commission beneficiary can withdraw commission")
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	p, err := c.loadPool(db)
	if err != nil {
		return err
	}
	if amount > p.Commission {
		return errors.Wrapf(errors.ErrInsufficientFunds, "commission pool %d, withdraw %d", p.Commission, amount)
	}
	p.Commission -= amount
	if err := c.pool.Put(db, poolKey, p); err != nil {
		return errors.Wrap(err, "save commission pool")
	}
	return c.payout(ctx, db, PayoutCommission, nil, caller, amount)
}

func (c *BaseController) Forward(ctx remit.Context, db remit.KVStore, agent, recipient remit.Address, amount uint64) error {
	return utils.Atomic(db, func(db remit.KVStore) error {
		return c.forward(ctx, db, agent, recipient, amount)
	})
}

func (c *BaseController) forward(ctx remit.Context, db remit.KVStore, agent, recipient remit.Address, amount uint64) error {
	if err := recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	a, err := c.loadAccount(db, agent)
	if err != nil {
		return err
	}
	if amount > a.Available {
		return errors.Wrapf(errors.ErrInsufficientFunds, "available %d, forward %d", a.Available, amount)
	}
	a.Available -= amount
	if err := c.saveAccount(db, agent, a); err != nil {
		return err
	}
	return c.payout(ctx, db, PayoutForward, agent, recipient, amount)
}

// payout records funds leaving the ledger. Within a PayoutDecorator the
// payment is queued for the decorator, otherwise the payer is called last,
// once all state changes succeeded.
func (c *BaseController) payout(ctx remit.Context, db remit.KVStore, kind string, src, to remit.Address, amount uint64) error {
	flows, err := c.loadFlows(db)
	if err != nil {
		return err
	}
	switch kind {
	case PayoutWithdraw:
		flows.Withdrawn += amount
	case PayoutCommission:
		flows.CommissionWithdrawn += amount
	case PayoutForward:
		flows.Forwarded += amount
	}
	if err := c.flows.Put(db, flowsKey, flows); err != nil {
		return errors.Wrap(err, "save flows")
	}

	now, ok := remit.BlockTime(ctx)
	if !ok {
		return errors.Wrap(errors.ErrState, "block time not present")
	}
	id, err := c.payoutID.NextVal(db)
	if err != nil {
		return errors.Wrap(err, "payout sequence")
	}
	p := Payout{
		Kind:      kind,
		Source:    src,
		Recipient: to,
		Amount:    amount,
		Time:      remit.AsUnixTime(now),
	}
	if err := c.payouts.Put(db, id, &p); err != nil {
		return errors.Wrap(err, "save payout")
	}

	if q := pendingFrom(ctx); q != nil {
		q.add(kind, to, amount)
		return nil
	}
	return pay(ctx, c.payer, kind, to, amount)
}

func pay(ctx remit.Context, payer Payer, kind string, to remit.Address, amount uint64) error {
	if err := payer.Pay(ctx, to, amount); err != nil {
		return errors.Wrap(err, "payer")
	}
	remit.GetLogger(ctx).Info("payout", "kind", kind, "recipient", to, "amount", amount)
	return nil
}

// Audit is a snapshot of all funds held by the ledger.
type Audit struct {
	Available  uint64 `json:"available"`
	Reserved   uint64 `json:"reserved"`
	Commission uint64 `json:"commission"`
	Flows
}

// Held returns the sum of all balances.
func (a *Audit) Held() uint64 {
	total, _ := sum(a.Available, a.Reserved, a.Commission)
	return total
}

// Expected returns what the ledger should hold according to the flows.
func (a *Audit) Expected() uint64 {
	return a.Deposited - a.Withdrawn - a.CommissionWithdrawn - a.Forwarded
}

func (c *BaseController) Audit(db remit.ReadOnlyKVStore) (*Audit, error) {
	var res Audit

	models, err := orm.NewBucket("account").Query(db, remit.PrefixQueryMod, nil)
	if err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}
	for _, m := range models {
		var a Account
		if err := orm.Unmarshal(m.Value, &a); err != nil {
			return nil, errors.Wrapf(err, "account %x", m.Key)
		}
		var ok bool
		if res.Available, ok = sum(res.Available, a.Available); !ok {
			return nil, errors.Wrap(errors.ErrOverflow, "available total")
		}
		if res.Reserved, ok = sum(res.Reserved, a.Reserved); !ok {
			return nil, errors.Wrap(errors.ErrOverflow, "reserved total")
		}
	}

	if res.Commission, err = c.CommissionPool(db); err != nil {
		return nil, err
	}
	flows, err := c.loadFlows(db)
	if err != nil {
		return nil, err
	}
	res.Flows = *flows
	if err := flows.Validate(); err != nil {
		return &res, errors.Wrap(err, "flows")
	}

	if _, ok := sum(res.Available, res.Reserved, res.Commission); !ok {
		return &res, errors.Wrap(errors.ErrOverflow, "held total")
	}
	if held, want := res.Held(), res.Expected(); held != want {
		return &res, errors.Wrapf(errors.ErrState, "ledger holds %d, flows account for %d", held, want)
	}
	return &res, nil
}

func (c *BaseController) loadAccount(db remit.ReadOnlyKVStore, acct remit.Address) (*Account, error) {
	var a Account
	switch err := c.accounts.One(db, acct, &a); {
	case err == nil:
		return &a, nil
	case errors.ErrNotFound.Is(err):
		return &Account{}, nil
	default:
		return nil, errors.Wrap(err, "load account")
	}
}

func (c *BaseController) saveAccount(db remit.KVStore, acct remit.Address, a *Account) error {
	if err := acct.Validate(); err != nil {
		return errors.Wrap(err, "account address")
	}
	if err := c.accounts.Put(db, acct, a); err != nil {
		return errors.Wrap(err, "save account")
	}
	return nil
}

func (c *BaseController) loadPool(db remit.ReadOnlyKVStore) (*Pool, error) {
	var p Pool
	switch err := c.pool.One(db, poolKey, &p); {
	case err == nil:
		return &p, nil
	case errors.ErrNotFound.Is(err):
		return &Pool{}, nil
	default:
		return nil, errors.Wrap(err, "load commission pool")
	}
}

func (c *BaseController) loadFlows(db remit.ReadOnlyKVStore) (*Flows, error) {
	var f Flows
	switch err := c.flows.One(db, flowsKey, &f); {
	case err == nil:
		return &f, nil
	case errors.ErrNotFound.Is(err):
		return &Flows{}, nil
	default:
		return nil, errors.Wrap(err, "load flows")
	}
}

func validateAmount(amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be greater than zero")
	}
	return nil
}

func add(a, b uint64) (uint64, error) {
	total, ok := sum(a, b)
	if !ok {
		return 0, errors.ErrOverflow
	}
	return total, nil
}
