/*
Package remit defines all common interfaces to tie together the ledger,
commission and ticket extensions, as well as implementations of some of the
simpler components (when interfaces would be too much overhead).

We pass context through context.Context between app, decorators and
handlers. To do so, remit defines some common keys to store info, such as
block time and the caller identity provided by the host. Each extension may
add its own keys to enrich the context with specific data.

There should exist two functions for every XYZ of type T that we want to
support in Context:

  WithXYZ(Context, T) Context
  XYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. block time, chain id).
*/
package remit
