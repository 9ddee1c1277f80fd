package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/remittest/assert"
	"github.com/iov-one/remit/store"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()

	a := NewSequence("names", "id")
	b := NewSequence("names", "other")

	latest, err := a.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), latest)

	first, err := a.NextVal(db)
	assert.Nil(t, err)
	second, err := a.NextVal(db)
	assert.Nil(t, err)
	if bytes.Compare(first, second) >= 0 {
		t.Fatalf("sequence not increasing: %x >= %x", first, second)
	}

	n, err := b.NextInt(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), n)

	latest, err = a.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(2), latest)
	assert.Equal(t, int64(2), DecodeSequence(second))
}

func TestValidateSequence(t *testing.T) {
	assert.IsErr(t, errors.ErrEmpty, ValidateSequence(nil))
	assert.IsErr(t, errors.ErrInput, ValidateSequence([]byte{1, 2, 3}))
	assert.Nil(t, ValidateSequence(EncodeSequence(42)))
}
