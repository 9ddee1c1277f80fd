package x

import remit "github.com/iov-one/remit"

// CallerTx is implemented by transactions that carry the identity of the
// caller, as authenticated by the host.
type CallerTx interface {
	remit.Tx
	GetCaller() remit.Address
}

// Validater is any struct that can be validated.
// Not the same as a Validator, which votes on blocks.
type Validater interface {
	Validate() error
}
