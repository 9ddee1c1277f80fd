package app

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/x"
)

// Tx is a single request of the host: one message submitted by the caller
// the host authenticated.
type Tx struct {
	Msg    remit.Msg
	Caller remit.Address
}

var _ x.CallerTx = (*Tx)(nil)

// GetMsg returns the message of the request.
func (tx *Tx) GetMsg() (remit.Msg, error) {
	return tx.Msg, nil
}

// GetCaller returns the authenticated caller, if any.
func (tx *Tx) GetCaller() remit.Address {
	return tx.Caller
}
