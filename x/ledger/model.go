package ledger

import (
	"math"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/orm"
)

// Account holds the funds of a single address.
type Account struct {
	// Available can be withdrawn or used to fund a ticket.
	Available uint64 `json:"available"`
	// Reserved is locked by funded tickets.
	Reserved uint64 `json:"reserved"`
}

var _ orm.Model = (*Account)(nil)

func (a *Account) Validate() error {
	if a.Available > math.MaxUint64-a.Reserved {
		return errors.Wrap(errors.ErrOverflow, "account total")
	}
	return nil
}

// Pool is the singleton commission pool.
type Pool struct {
	Commission uint64 `json:"commission"`
}

var _ orm.Model = (*Pool)(nil)

func (p *Pool) Validate() error {
	return nil
}

// Flows counts all funds that entered and left the ledger.
type Flows struct {
	Deposited           uint64 `json:"deposited"`
	Withdrawn           uint64 `json:"withdrawn"`
	CommissionWithdrawn uint64 `json:"commission_withdrawn"`
	Forwarded           uint64 `json:"forwarded"`
}

var _ orm.Model = (*Flows)(nil)

func (f *Flows) Validate() error {
	out, ok := sum(f.Withdrawn, f.CommissionWithdrawn, f.Forwarded)
	if !ok {
		return errors.Wrap(errors.ErrOverflow, "outflow")
	}
	if out > f.Deposited {
		return errors.Wrap(errors.ErrState, "more funds left than entered")
	}
	return nil
}

// Kinds of payouts.
const (
	PayoutWithdraw   = "withdraw"
	PayoutCommission = "commission"
	PayoutForward    = "forward"
)

// Payout is a record of funds paid out to the host.
type Payout struct {
	Kind      string         `json:"kind"`
	Source    remit.Address  `json:"source"`
	Recipient remit.Address  `json:"recipient"`
	Amount    uint64         `json:"amount"`
	Time      remit.UnixTime `json:"time"`
}

var _ orm.Model = (*Payout)(nil)

func (p *Payout) Validate() error {
	switch p.Kind {
	case PayoutWithdraw, PayoutCommission, PayoutForward:
	default:
		return errors.Wrapf(errors.ErrInput, "unknown payout kind %q", p.Kind)
	}
	if err := p.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if p.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "payout amount")
	}
	if err := p.Time.Validate(); err != nil {
		return errors.Wrap(err, "time")
	}
	return nil
}

var (
	poolKey  = []byte("commission")
	flowsKey = []byte("totals")
)

// NewAccountBucket returns a bucket of accounts keyed by address.
func NewAccountBucket() orm.ModelBucket {
	return orm.NewModelBucket("account", &Account{})
}

// NewPoolBucket returns a bucket holding the commission pool.
func NewPoolBucket() orm.ModelBucket {
	return orm.NewModelBucket("pool", &Pool{})
}

// NewFlowsBucket returns a bucket holding the flows totals.
func NewFlowsBucket() orm.ModelBucket {
	return orm.NewModelBucket("flows", &Flows{})
}

// NewPayoutBucket returns a bucket of payouts keyed by sequence and
// indexed by recipient.
func NewPayoutBucket() orm.ModelBucket {
	return orm.NewModelBucket("payout", &Payout{},
		orm.WithIndex("recipient", payoutRecipient))
}

func payoutRecipient(m orm.Model) ([]byte, error) {
	p, ok := m.(*Payout)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return p.Recipient, nil
}

// sum adds all values. False is returned on overflow.
func sum(values ...uint64) (uint64, bool) {
	var total uint64
	for _, v := range values {
		if v > math.MaxUint64-total {
			return 0, false
		}
		total += v
	}
	return total, true
}
