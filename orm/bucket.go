package orm

import (
	"fmt"
	"regexp"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket is a prefixed subspace of the DB. All keys written through the
// bucket are prefixed with its name.
//
// This is a generic building block that should generally
// be embedded in a type-safe wrapper to ensure all data
// is the same type.
type Bucket struct {
	name   string
	prefix []byte
}

var _ remit.QueryHandler = Bucket{}

// NewBucket creates a bucket to store data
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of this bucket.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Query handles queries from the QueryRouter
func (b Bucket) Query(db remit.ReadOnlyKVStore, mod string, data []byte) ([]remit.Model, error) {
	switch mod {
	case remit.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		return []remit.Model{remit.Pair(key, value)}, nil
	case remit.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

// Sequence returns a Sequence by name
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// queryPrefix returns all models which keys start with given prefix.
func queryPrefix(db remit.ReadOnlyKVStore, prefix []byte) ([]remit.Model, error) {
	iter, err := db.Iterator(prefix, prefixRangeEnd(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(iter), nil
}

// ConsumeIterator will read all remaining data into an
// array and release the iterator
func ConsumeIterator(itr remit.Iterator) []remit.Model {
	defer itr.Release()

	var res []remit.Model
	for ; itr.Valid(); itr.Next() {
		res = append(res, remit.Pair(itr.Key(), itr.Value()))
	}
	return res
}

// prefixRangeEnd returns the smallest key that is greater than all keys
// starting with given prefix. Nil means there is no such key.
func prefixRangeEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
