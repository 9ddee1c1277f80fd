package ticket

import (
	"fmt"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/orm"
	"github.com/iov-one/remit/x/commitment"
)

const maxMemoSize = 128

// State of a ticket.
type State int32

const (
	Open State = iota + 1
	Funded
	Released
	Cancelled
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Funded:
		return "funded"
	case Released:
		return "released"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Resolved returns true for the final states.
func (s State) Resolved() bool {
	return s == Released || s == Cancelled
}

// Ticket is a single hash-locked remittance.
type Ticket struct {
	Beneficiary remit.Address `json:"beneficiary"`
	Digest1     []byte        `json:"digest1"`
	Digest2     []byte        `json:"digest2"`
	Memo        string        `json:"memo,omitempty"`
	State       State         `json:"state"`
	// Depositor is set when the ticket is funded.
	Depositor remit.Address `json:"depositor,omitempty"`
	// Amount is locked only while the ticket is funded.
	Amount   uint64         `json:"amount"`
	Deadline remit.UnixTime `json:"deadline,omitempty"`
	// Commission and Paid are set on release.
	Commission uint64 `json:"commission,omitempty"`
	Paid       uint64 `json:"paid,omitempty"`
}

var _ orm.Model = (*Ticket)(nil)

// Validate ensures the Ticket is valid.
func (t *Ticket) Validate() error {
	if err := t.Beneficiary.Validate(); err != nil {
		return errors.Wrap(err, "beneficiary")
	}
	if err := commitment.ValidateDigest(t.Digest1); err != nil {
		return errors.Wrap(err, "digest1")
	}
	if err := commitment.ValidateDigest(t.Digest2); err != nil {
		return errors.Wrap(err, "digest2")
	}
	if len(t.Memo) > maxMemoSize {
		return errors.Wrapf(errors.ErrInput, "memo longer than %d", maxMemoSize)
	}
	switch t.State {
	case Open, Released, Cancelled:
		if t.Amount != 0 {
			return errors.Wrapf(errors.ErrState, "%s ticket holds %d", t.State, t.Amount)
		}
	case Funded:
		if t.Amount == 0 {
			return errors.Wrap(errors.ErrState, "funded ticket without amount")
		}
		if err := t.Depositor.Validate(); err != nil {
			return errors.Wrap(err, "depositor")
		}
		if t.Deadline == 0 {
			return errors.Wrap(errors.ErrState, "funded ticket without deadline")
		}
	default:
		return errors.Wrapf(errors.ErrState, "unknown %s", t.State)
	}
	if err := t.Deadline.Validate(); err != nil {
		return errors.Wrap(err, "deadline")
	}
	return nil
}

// ID returns the key of the ticket.
func (t *Ticket) ID() []byte {
	return commitment.LockID(t.Beneficiary, t.Digest1, t.Digest2)
}

// NewBucket returns a bucket of tickets keyed by the lock identifier.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("ticket", &Ticket{},
		orm.WithIndex("depositor", idxDepositor),
		orm.WithIndex("beneficiary", idxBeneficiary),
	)
}

func idxDepositor(m orm.Model) ([]byte, error) {
	t, ok := m.(*Ticket)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	if len(t.Depositor) == 0 {
		return nil, nil
	}
	return t.Depositor, nil
}

func idxBeneficiary(m orm.Model) ([]byte, error) {
	t, ok := m.(*Ticket)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return t.Beneficiary, nil
}
