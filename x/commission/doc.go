/*
Package commission computes the fee skimmed from every released ticket.

Exactly one policy is configured per deployment. It is applied at release
time only, and the commission never exceeds the released amount.
*/
package commission
