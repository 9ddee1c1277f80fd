/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps a single configuration object, stored under the
"_c:<package>" key. The configuration is loaded from the genesis file and
may be changed later only by the ledger owner, using the update
configuration handler.

Not being able to get a configuration value is a critical condition for the
application and there is no recovery path for the client. Use the Must
helpers only where the configuration is guaranteed to exist.
*/
package gconf
