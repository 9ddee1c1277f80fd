package ticket

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/orm"
	"github.com/iov-one/remit/x/commission"
	"github.com/iov-one/remit/x/commitment"
	"github.com/iov-one/remit/x/ledger"
	"github.com/iov-one/remit/x/utils"
)

// Controller drives tickets through their states. Funds are held by the
// ledger, the controller only reserves, claims and credits them. A
// transition that fails leaves a cacheable store unchanged.
type Controller struct {
	bucket orm.ModelBucket
	ledger ledger.Controller
}

// NewController returns a controller that keeps funds in given ledger.
func NewController(l ledger.Controller) *Controller {
	return &Controller{
		bucket: NewBucket(),
		ledger: l,
	}
}

// Create stores an open ticket and returns its identifier. It fails with
// ErrDuplicate if an unresolved ticket with the same identifier exists.
func (c *Controller) Create(ctx remit.Context, db remit.KVStore, beneficiary remit.Address, digest1, digest2 []byte, memo string) ([]byte, error) {
	t := Ticket{
		Beneficiary: beneficiary,
		Digest1:     digest1,
		Digest2:     digest2,
		Memo:        memo,
		State:       Open,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	id := t.ID()

	switch prev, err := c.Get(db, id); {
	case ErrTicketNotFound.Is(err):
	case err != nil:
		return nil, err
	case !prev.State.Resolved():
		return nil, errors.Wrapf(errors.ErrDuplicate, "ticket %X is %s", id, prev.State)
	}

	if err := c.bucket.Put(db, id, &t); err != nil {
		return nil, errors.Wrap(err, "save ticket")
	}
	remit.GetLogger(ctx).Debug("ticket created", "id", hexID(id), "beneficiary", beneficiary)
	return id, nil
}

// Fund locks amount of the caller's funds in an open ticket until the
// deadline, offset seconds from now.
func (c *Controller) Fund(ctx remit.Context, db remit.KVStore, id []byte, amount uint64, offset int64, caller remit.Address) error {
	return utils.Atomic(db, func(db remit.KVStore) error {
		return c.fund(ctx, db, id, amount, offset, caller)
	})
}

func (c *Controller) fund(ctx remit.Context, db remit.KVStore, id []byte, amount uint64, offset int64, caller remit.Address) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be greater than zero")
	}
	t, err := c.load(db, id)
	if err != nil {
		return err
	}
	switch t.State {
	case Open:
	case Funded:
		return errors.Wrapf(ErrAlreadyFunded, "ticket %X", id)
	case Released:
		return errors.Wrapf(ErrAlreadyReleased, "ticket %X", id)
	default:
		return errors.Wrapf(ErrTicketNotFound, "ticket %X is %s", id, t.State)
	}
	if err := caller.Validate(); err != nil {
		return errors.Wrap(err, "depositor")
	}
	deadline, err := c.deadline(ctx, db, offset)
	if err != nil {
		return err
	}

	if err := c.ledger.Reserve(ctx, db, caller, amount); err != nil {
		return errors.Wrap(err, "reserve")
	}
	t.State = Funded
	t.Depositor = caller
	t.Amount = amount
	t.Deadline = deadline
	if err := c.bucket.Put(db, id, t); err != nil {
		return errors.Wrap(err, "save ticket")
	}
	remit.GetLogger(ctx).Info("ticket funded",
		"id", hexID(id), "depositor", caller, "amount", amount, "deadline", deadline)
	return nil
}

// FundNew creates and funds a ticket at once.
func (c *Controller) FundNew(ctx remit.Context, db remit.KVStore, beneficiary remit.Address, digest1, digest2 []byte, memo string, amount uint64, offset int64, caller remit.Address) ([]byte, error) {
	var id []byte
	err := utils.Atomic(db, func(db remit.KVStore) error {
		var err error
		if id, err = c.Create(ctx, db, beneficiary, digest1, digest2, memo); err != nil {
			return err
		}
		return c.fund(ctx, db, id, amount, offset, caller)
	})
	if err != nil {
		return nil, err
	}
	return id, nil
}

// Cancel returns the funds of a funded ticket to its depositor. Only the
// depositor can cancel, at any time before the release.
func (c *Controller) Cancel(ctx remit.Context, db remit.KVStore, id []byte, caller remit.Address) error {
	return utils.Atomic(db, func(db remit.KVStore) error {
		return c.cancel(ctx, db, id, caller)
	})
}

func (c *Controller) cancel(ctx remit.Context, db remit.KVStore, id []byte, caller remit.Address) error {
	t, err := c.loadFunded(db, id)
	if err != nil {
		return err
	}
	if !t.Depositor.Equals(caller) {
		return errors.Wrap(errors.ErrUnauthorized, "only the depositor can cancel")
	}
	if err := c.ledger.ReleaseReservation(ctx, db, t.Depositor, t.Amount); err != nil {
		return errors.Wrap(err, "refund")
	}
	refund := t.Amount
	t.State = Cancelled
	t.Amount = 0
	if err := c.bucket.Put(db, id, t); err != nil {
		return errors.Wrap(err, "save ticket")
	}
	remit.GetLogger(ctx).Info("ticket cancelled", "id", hexID(id), "refund", refund)
	return nil
}

// Release pays a funded ticket to its beneficiary, minus the commission.
// Both secrets must match their digests and the deadline must not have
// passed. Anyone knowing the secrets can release, the funds always go to
// the beneficiary.
func (c *Controller) Release(ctx remit.Context, db remit.KVStore, id []byte, secret1, secret2 []byte) (*Ticket, error) {
	var t *Ticket
	err := utils.Atomic(db, func(db remit.KVStore) error {
		var err error
		t, err = c.release(ctx, db, id, secret1, secret2)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (c *Controller) release(ctx remit.Context, db remit.KVStore, id []byte, secret1, secret2 []byte) (*Ticket, error) {
	t, err := c.loadFunded(db, id)
	if err != nil {
		return nil, err
	}
	if remit.IsExpired(ctx, t.Deadline) {
		return nil, errors.Wrapf(errors.ErrExpired, "deadline %s", t.Deadline)
	}
	scheme, err := LoadScheme(db)
	if err != nil {
		return nil, err
	}
	if err := verifyProofs(scheme, t, secret1, secret2); err != nil {
		return nil, err
	}

	policy, err := commission.LoadPolicy(db)
	if err != nil {
		return nil, err
	}
	fee, err := policy.Commission(t.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "commission")
	}
	if fee > t.Amount {
		return nil, errors.Wrapf(errors.ErrHuman, "commission %d exceeds amount %d", fee, t.Amount)
	}
	paid := t.Amount - fee

	if err := c.ledger.Claim(ctx, db, t.Depositor, t.Amount); err != nil {
		return nil, errors.Wrap(err, "claim")
	}
	if fee > 0 {
		if err := c.ledger.CommissionPoolAdd(ctx, db, fee); err != nil {
			return nil, errors.Wrap(err, "commission pool")
		}
	}
	if paid > 0 {
		if err := c.ledger.Credit(ctx, db, t.Beneficiary, paid); err != nil {
			return nil, errors.Wrap(err, "credit beneficiary")
		}
	}

	t.State = Released
	t.Amount = 0
	t.Commission = fee
	t.Paid = paid
	if err := c.bucket.Put(db, id, t); err != nil {
		return nil, errors.Wrap(err, "save ticket")
	}
	remit.GetLogger(ctx).Info("ticket released",
		"id", hexID(id), "beneficiary", t.Beneficiary, "paid", paid, "commission", fee)
	return t, nil
}

// ExtendDeadline moves the deadline of a funded ticket to offset seconds
// from now. Only the owner can extend, and only to a later deadline.
func (c *Controller) ExtendDeadline(ctx remit.Context, db remit.KVStore, id []byte, offset int64, caller remit.Address) error {
	owner, err := ledger.Owner(db)
	if err != nil {
		return err
	}
	if len(owner) == 0 || !owner.Equals(caller) {
		return errors.Wrap(errors.ErrUnauthorized, "only the owner can extend a deadline")
	}
	t, err := c.loadFunded(db, id)
	if err != nil {
		return err
	}
	deadline, err := c.deadline(ctx, db, offset)
	if err != nil {
		return err
	}
	if deadline <= t.Deadline {
		return errors.Wrapf(errors.ErrInput, "deadline %s is not after %s", deadline, t.Deadline)
	}
	t.Deadline = deadline
	if err := c.bucket.Put(db, id, t); err != nil {
		return errors.Wrap(err, "save ticket")
	}
	remit.GetLogger(ctx).Info("ticket deadline extended", "id", hexID(id), "deadline", deadline)
	return nil
}

// Info returns the locked amount, the deadline and the state of a ticket.
func (c *Controller) Info(db remit.ReadOnlyKVStore, id []byte) (uint64, remit.UnixTime, State, error) {
	t, err := c.Get(db, id)
	if err != nil {
		return 0, 0, 0, err
	}
	return t.Amount, t.Deadline, t.State, nil
}

// Reserved returns the sum of all funded tickets, per depositor address.
// Every depositor must have exactly this amount reserved in the ledger.
func (c *Controller) Reserved(db remit.ReadOnlyKVStore) (map[string]uint64, error) {
	models, err := orm.NewBucket("ticket").Query(db, remit.PrefixQueryMod, nil)
	if err != nil {
		return nil, errors.Wrap(err, "list tickets")
	}
	res := make(map[string]uint64)
	for _, m := range models {
		var t Ticket
		if err := orm.Unmarshal(m.Value, &t); err != nil {
			return nil, errors.Wrapf(err, "ticket %x", m.Key)
		}
		if t.State != Funded {
			continue
		}
		total := res[string(t.Depositor)] + t.Amount
		if total < t.Amount {
			return nil, errors.Wrapf(errors.ErrOverflow, "reserved by %s", t.Depositor)
		}
		res[string(t.Depositor)] = total
	}
	return res, nil
}

// Audit checks that the funds reserved in the ledger are exactly the funds
// locked in funded tickets, for every depositor. It returns the ledger
// audit.
func (c *Controller) Audit(db remit.ReadOnlyKVStore) (*ledger.Audit, error) {
	audit, err := c.ledger.Audit(db)
	if err != nil {
		return audit, err
	}
	locked, err := c.Reserved(db)
	if err != nil {
		return audit, err
	}
	var total uint64
	for depositor, amount := range locked {
		acct, err := c.ledger.Account(db, remit.Address(depositor))
		if err != nil {
			return audit, err
		}
		if acct.Reserved != amount {
			return audit, errors.Wrapf(errors.ErrState,
				"%s has %d reserved, tickets lock %d", remit.Address(depositor), acct.Reserved, amount)
		}
		total += amount
	}
	if total != audit.Reserved {
		return audit, errors.Wrapf(errors.ErrState,
			"ledger has %d reserved, tickets lock %d", audit.Reserved, total)
	}
	return audit, nil
}

// Get returns the ticket or ErrTicketNotFound.
func (c *Controller) Get(db remit.ReadOnlyKVStore, id []byte) (*Ticket, error) {
	var t Ticket
	switch err := c.bucket.One(db, id, &t); {
	case err == nil:
		return &t, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrTicketNotFound, "ticket %X", id)
	default:
		return nil, err
	}
}

// ByDepositor returns the identifiers of all tickets funded by given
// account.
func (c *Controller) ByDepositor(db remit.ReadOnlyKVStore, depositor remit.Address) ([][]byte, error) {
	return c.bucket.ByIndex(db, "depositor", depositor)
}

// ByBeneficiary returns the identifiers of all tickets of given
// beneficiary.
func (c *Controller) ByBeneficiary(db remit.ReadOnlyKVStore, beneficiary remit.Address) ([][]byte, error) {
	return c.bucket.ByIndex(db, "beneficiary", beneficiary)
}

func (c *Controller) load(db remit.ReadOnlyKVStore, id []byte) (*Ticket, error) {
	if len(id) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "ticket id")
	}
	return c.Get(db, id)
}

// loadFunded returns the ticket if it is funded. A cancelled ticket is
// reported as not found.
func (c *Controller) loadFunded(db remit.ReadOnlyKVStore, id []byte) (*Ticket, error) {
	t, err := c.load(db, id)
	if err != nil {
		return nil, err
	}
	switch t.State {
	case Funded:
		return t, nil
	case Released:
		return nil, errors.Wrapf(ErrAlreadyReleased, "ticket %X", id)
	default:
		return nil, errors.Wrapf(ErrTicketNotFound, "ticket %X is %s", id, t.State)
	}
}

func (c *Controller) deadline(ctx remit.Context, db remit.ReadOnlyKVStore, offset int64) (remit.UnixTime, error) {
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	if err := conf.validateOffset(offset); err != nil {
		return 0, err
	}
	deadline, err := remit.MustBlockTime(ctx).AddSeconds(offset)
	if err != nil {
		return 0, errors.Wrap(err, "deadline")
	}
	return deadline, nil
}

// verifyProofs checks both secrets. A single failing proof fails the
// whole release.
func verifyProofs(s commitment.Scheme, t *Ticket, secret1, secret2 []byte) error {
	ok1 := commitment.Verify(s, secret1, t.Digest1)
	ok2 := commitment.Verify(s, secret2, t.Digest2)
	if !ok1 || !ok2 {
		return errors.Wrap(ErrInvalidProof, "secrets do not match the digests")
	}
	return nil
}

type hexID []byte

func (h hexID) String() string {
	return remit.Address(h).String()
}
