package ticket

import "github.com/iov-one/remit/errors"

// Ticket extension takes 1000-1010 error codes.
var (
	ErrTicketNotFound  = errors.Register(1000, "ticket not found")
	ErrAlreadyFunded   = errors.Register(1001, "ticket already funded")
	ErrAlreadyReleased = errors.Register(1002, "ticket already released")
	ErrInvalidProof    = errors.Register(1003, "invalid proof")
)
