/*
Package commitment implements the hash commitments that lock tickets.

A commitment is a one way digest of a secret. The secret is revealed at
release time and checked against the stored digest. Two digests, each
produced from an independent secret, lock a single ticket.
*/
package commitment
