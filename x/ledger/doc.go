/*
Package ledger keeps the balances of all accounts and of the commission
pool.

Every account has an available and a reserved balance. Deposits and
credits increase the available balance. Funding a ticket moves funds from
available to reserved. A released ticket consumes the reservation, while a
cancelled one moves it back.

Funds leave the ledger only through a payout to the host Payer: an account
withdrawal, a commission withdrawal or a relay forward. All movements are
counted in the flows totals, so that Audit can prove that the ledger never
creates or destroys funds.
*/
package ledger
