package remittest

import remit "github.com/iov-one/remit"

// Tx represents a single request sent by the host. It carries one message
// together with the authenticated caller.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg remit.Msg
	// Caller is the identity authenticated by the host.
	Caller remit.Address
	// Err if set is returned by any method call.
	Err error
}

var _ remit.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (remit.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) GetCaller() remit.Address {
	return tx.Caller
}

// Msg represents a message that is not handled by any extension.
type Msg struct {
	// Path returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by the Validate method.
	Err error
}

var _ remit.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
