/*
Package x contains the extensions of the remittance ledger and the helpers
they share.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together in the app package to construct the
ledger.

Follow standard go naming conventions and avoid stutter. Use eg.
`ticket.FundMsg` in place of `ticket.FundTicketMsg`.
*/
package x
