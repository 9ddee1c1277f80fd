/*
Package ticket implements hash-locked remittance tickets.

A ticket is identified by its beneficiary and two commitment digests. The
depositor funds it by reserving ledger balance. The beneficiary relay agent
gets the funds, minus commission, once both secrets are revealed before the
deadline. Until then the depositor can cancel the ticket and get the full
amount back.

	Open --fund--> Funded --release--> Released
	                  \
	                   --cancel--> Cancelled

A resolved ticket, released or cancelled, can be created again.
*/
package ticket
