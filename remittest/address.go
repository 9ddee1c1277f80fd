package remittest

import (
	"crypto/rand"
	"testing"

	remit "github.com/iov-one/remit"
)

// RandomAddr returns a new random address. Use it in tests to create
// distinct parties.
func RandomAddr(t testing.TB) remit.Address {
	t.Helper()
	raw := make([]byte, remit.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot read random data: %s", err)
	}
	return remit.Address(raw)
}

// ParseAddress takes an address in a human readable format and returns
// its binary representation.
func ParseAddress(t testing.TB, encodedAddress string) remit.Address {
	t.Helper()

	addr, err := remit.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// SequenceAddr returns an address derived from a name, stable between test
// runs. This is useful for naming parties in scenarios.
func SequenceAddr(name string) remit.Address {
	return remit.NewAddress([]byte(name))
}
