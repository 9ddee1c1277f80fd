package commission

import (
	"math/bits"

	"github.com/iov-one/remit/errors"
)

// MaxBasisPoints is 100%.
const MaxBasisPoints = 10000

// Policy computes the commission for a released amount.
type Policy interface {
	// Commission returns the part of amount that goes to the commission
	// pool. Result is never greater than amount.
	Commission(amount uint64) (uint64, error)
}

// Fixed is a policy that takes the same fee from every release. Amounts
// lower than the fee are taken in full.
type Fixed uint64

var _ Policy = Fixed(0)

func (f Fixed) Commission(amount uint64) (uint64, error) {
	if uint64(f) > amount {
		return amount, nil
	}
	return uint64(f), nil
}

// Percentage is a policy that takes a fraction of the released amount,
// expressed in basis points (1/100 of a percent). Result is truncated toward
// zero.
type Percentage uint32

var _ Policy = Percentage(0)

func (p Percentage) Commission(amount uint64) (uint64, error) {
	if p > MaxBasisPoints {
		return 0, errors.Wrapf(errors.ErrState, "%d basis points exceeds %d", p, MaxBasisPoints)
	}
	hi, lo := bits.Mul64(amount, uint64(p))
	// hi < MaxBasisPoints because p <= MaxBasisPoints, so the division
	// cannot overflow.
	quo, _ := bits.Div64(hi, lo, MaxBasisPoints)
	return quo, nil
}
