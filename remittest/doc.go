/*
Package remittest provides helpers and mocks for testing the ledger
extensions and the application.
*/
package remittest
