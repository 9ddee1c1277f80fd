package commitment

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/remittest/assert"
)

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("invalid hex: %s", err)
	}
	return b
}

func TestSchemeDigests(t *testing.T) {
	cases := map[string]struct {
		scheme Scheme
		secret []byte
		want   string
	}{
		"keccak of empty": {
			scheme: Keccak256,
			secret: nil,
			want:   "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
		"keccak of abc": {
			scheme: Keccak256,
			secret: []byte("abc"),
			want:   "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		},
		"sha256 of empty": {
			scheme: SHA256,
			secret: []byte{},
			want:   "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := tc.scheme.Commit(tc.secret)
			assert.Equal(t, fromHex(t, tc.want), got)
			assert.Equal(t, DigestSize, len(got))
			if !Verify(tc.scheme, tc.secret, got) {
				t.Fatal("digest not verified")
			}
		})
	}
}

func TestVerify(t *testing.T) {
	digest := Keccak256.Commit([]byte("s1"))

	if Verify(Keccak256, []byte("s2"), digest) {
		t.Fatal("wrong secret verified")
	}
	if Verify(SHA256, []byte("s1"), digest) {
		t.Fatal("wrong scheme verified")
	}
	if Verify(Keccak256, []byte("s1"), digest[:31]) {
		t.Fatal("truncated digest verified")
	}
}

func TestSchemeByName(t *testing.T) {
	s, err := SchemeByName("")
	assert.Nil(t, err)
	assert.Equal(t, Keccak256Name, s.Name())

	s, err = SchemeByName("SHA256")
	assert.Nil(t, err)
	assert.Equal(t, SHA256Name, s.Name())

	_, err = SchemeByName("md5")
	assert.IsErr(t, errors.ErrInput, err)
}

func TestValidateDigest(t *testing.T) {
	assert.IsErr(t, errors.ErrEmpty, ValidateDigest(nil))
	assert.IsErr(t, errors.ErrInput, ValidateDigest(make([]byte, 20)))
	assert.Nil(t, ValidateDigest(make([]byte, DigestSize)))
}

func TestLockID(t *testing.T) {
	exchange := bytes.Repeat([]byte{1}, 20)
	d1 := Keccak256.Commit([]byte("one"))
	d2 := Keccak256.Commit([]byte("two"))

	id := LockID(exchange, d1, d2)
	assert.Equal(t, 32, len(id))
	assert.Equal(t, id, LockID(exchange, d1, d2))

	if bytes.Equal(id, LockID(exchange, d2, d1)) {
		t.Fatal("digest order must matter")
	}
	other := bytes.Repeat([]byte{2}, 20)
	if bytes.Equal(id, LockID(other, d1, d2)) {
		t.Fatal("beneficiary must matter")
	}
}
