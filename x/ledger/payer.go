package ledger

import (
	"sync"

	remit "github.com/iov-one/remit"
)

// Payer is implemented by the host. It transfers funds out of the ledger to
// an external recipient.
type Payer interface {
	Pay(ctx remit.Context, to remit.Address, amount uint64) error
}

// NopPayer accepts every payment without doing anything.
type NopPayer struct{}

var _ Payer = NopPayer{}

func (NopPayer) Pay(remit.Context, remit.Address, uint64) error {
	return nil
}

// Payment is a single call to the Payer.
type Payment struct {
	To     remit.Address
	Amount uint64
}

// RecordingPayer keeps every payment in memory. When Err is set, it is
// returned instead.
type RecordingPayer struct {
	mu       sync.Mutex
	payments []Payment

	Err error
}

var _ Payer = (*RecordingPayer)(nil)

func (p *RecordingPayer) Pay(ctx remit.Context, to remit.Address, amount uint64) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	p.payments = append(p.payments, Payment{To: to.Clone(), Amount: amount})
	p.mu.Unlock()
	return nil
}

// Payments returns a copy of all recorded payments.
func (p *RecordingPayer) Payments() []Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Payment(nil), p.payments...)
}

// Total returns the sum of all payments made to given address.
func (p *RecordingPayer) Total(to remit.Address) uint64 {
	var total uint64
	for _, pay := range p.Payments() {
		if pay.To.Equals(to) {
			total += pay.Amount
		}
	}
	return total
}
