package orm

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
)

// Indexer calculates the secondary index key for a given model. Returning
// nil key means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// index is a non unique secondary index. For every indexed model an entry
// is stored under
//    _i.<bucket>_<name>:<len(value)><value><primary key>
// with the primary key as the entry value, so that all models indexed under
// the same value can be found with a single prefix scan.
type index struct {
	name    string
	id      []byte
	indexer Indexer
}

func newIndex(bucket, name string, indexer Indexer) index {
	return index{
		name:    name,
		id:      []byte("_i." + bucket + "_" + name + ":"),
		indexer: indexer,
	}
}

func (i index) valuePrefix(value []byte) []byte {
	out := make([]byte, 0, len(i.id)+1+len(value))
	out = append(out, i.id...)
	out = append(out, byte(len(value)))
	return append(out, value...)
}

func (i index) entryKey(value, pk []byte) []byte {
	return append(i.valuePrefix(value), pk...)
}

func (i index) keyOf(m Model) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	value, err := i.indexer(m)
	if err != nil {
		return nil, errors.Wrapf(err, "index %s", i.name)
	}
	if len(value) > 255 {
		return nil, errors.Wrapf(errors.ErrInput, "index %s value too long", i.name)
	}
	return value, nil
}

// update moves the index entry of the primary key from the prev index value
// to the value of save. Nil prev means insert, nil save means delete.
func (i index) update(db remit.KVStore, pk []byte, prev, save Model) error {
	before, err := i.keyOf(prev)
	if err != nil {
		return err
	}
	after, err := i.keyOf(save)
	if err != nil {
		return err
	}
	if before != nil {
		if err := db.Delete(i.entryKey(before, pk)); err != nil {
			return errors.Wrap(err, "cannot remove index entry")
		}
	}
	if after != nil {
		if err := db.Set(i.entryKey(after, pk), pk); err != nil {
			return errors.Wrap(err, "cannot write index entry")
		}
	}
	return nil
}

// keys returns the primary keys of all models indexed under given value.
func (i index) keys(db remit.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	prefix := i.valuePrefix(value)
	iter, err := db.Iterator(prefix, prefixRangeEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer iter.Release()

	var res [][]byte
	for ; iter.Valid(); iter.Next() {
		res = append(res, iter.Value())
	}
	return res, nil
}
