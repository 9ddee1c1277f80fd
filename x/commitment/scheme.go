package commitment

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/iov-one/remit/errors"
	"golang.org/x/crypto/sha3"
)

// DigestSize is the length of every digest produced by a Scheme.
const DigestSize = 32

// Scheme is a one way function used to commit to a secret.
type Scheme interface {
	// Name is the identifier used in configuration.
	Name() string
	// Commit returns the DigestSize long digest of the secret.
	Commit(secret []byte) []byte
}

const (
	Keccak256Name = "keccak256"
	SHA256Name    = "sha256"
)

// Keccak256 is the legacy Keccak hash, as used by Ethereum. It differs from
// the standardized SHA3-256 in padding.
var Keccak256 Scheme = keccak{}

// SHA256 is the standard sha256 hash.
var SHA256 Scheme = sha{}

type keccak struct{}

func (keccak) Name() string { return Keccak256Name }

func (keccak) Commit(secret []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(secret)
	return h.Sum(nil)
}

type sha struct{}

func (sha) Name() string { return SHA256Name }

func (sha) Commit(secret []byte) []byte {
	d := sha256.Sum256(secret)
	return d[:]
}

// SchemeByName returns the scheme registered under given name. Empty name
// selects the default Keccak256 scheme.
func SchemeByName(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case "", Keccak256Name:
		return Keccak256, nil
	case SHA256Name:
		return SHA256, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown commitment scheme %q", name)
	}
}

// Verify returns true if the secret commits to given digest. Comparison is
// done in constant time.
func Verify(s Scheme, secret, digest []byte) bool {
	if len(digest) != DigestSize {
		return false
	}
	return subtle.ConstantTimeCompare(s.Commit(secret), digest) == 1
}

// ValidateDigest returns an error if given value cannot be a digest.
func ValidateDigest(d []byte) error {
	if len(d) == 0 {
		return errors.Wrap(errors.ErrEmpty, "digest")
	}
	if len(d) != DigestSize {
		return errors.Wrapf(errors.ErrInput, "digest must be %d bytes, got %d", DigestSize, len(d))
	}
	return nil
}

// LockID combines the beneficiary and both digests into a single
// identifier. Input parts are of a fixed length, so that no two different
// triples produce the same preimage.
func LockID(beneficiary, digest1, digest2 []byte) []byte {
	h := sha256.New()
	h.Write(beneficiary)
	h.Write(digest1)
	h.Write(digest2)
	return h.Sum(nil)
}
