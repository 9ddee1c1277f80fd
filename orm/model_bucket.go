package orm

import (
	"fmt"
	"reflect"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
)

// ModelBucket stores models of a single type. Lookup is done by the primary
// key or by any of the secondary indexes.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db remit.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists, and
	// ErrNotFound otherwise.
	Has(db remit.ReadOnlyKVStore, key []byte) error

	// ByIndex returns the primary keys of all entities that were indexed
	// under given value by the named index.
	ByIndex(db remit.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error)

	// Put validates and saves given model in the database.
	Put(db remit.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db remit.KVStore, key []byte) error

	// Register registers this bucket and its indexes for queries.
	Register(name string, r remit.QueryRouter)
}

// NewModelBucket returns a ModelBucket instance for models of the same
// type as the given prototype.
func NewModelBucket(name string, proto Model, opts ...ModelBucketOption) ModelBucket {
	t := reflect.TypeOf(proto)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("model prototype must be a pointer to a struct, got %T", proto))
	}
	mb := &modelBucket{
		b:       NewBucket(name),
		model:   t.Elem(),
		indexes: make(map[string]index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build a secondary index using given
// indexer function.
func WithIndex(name string, indexer Indexer) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("index %q registered twice", name))
		}
		mb.indexes[name] = newIndex(mb.b.name, name, indexer)
	}
}

type modelBucket struct {
	b       Bucket
	model   reflect.Type
	indexes map[string]index
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) One(db remit.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "%s cannot be represented as %T", mb.model, dest)
	}
	raw, err := db.Get(mb.b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	// Reset the destination so that no state leaks from a reused value.
	reflect.ValueOf(dest).Elem().Set(reflect.Zero(mb.model))
	return Unmarshal(raw, dest)
}

func (mb *modelBucket) Has(db remit.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %x", mb.b.name, key)
	}
	return nil
}

func (mb *modelBucket) ByIndex(db remit.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown index %q", indexName)
	}
	return idx.keys(db, value)
}

func (mb *modelBucket) Put(db remit.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if reflect.TypeOf(m) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.b.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := Marshal(m)
	if err != nil {
		return err
	}
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if err := mb.updateIndexes(db, key, prev, m); err != nil {
		return err
	}
	if err := db.Set(mb.b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db remit.KVStore, key []byte) error {
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %x", mb.b.name, key)
	}
	if err := mb.updateIndexes(db, key, prev, nil); err != nil {
		return err
	}
	if err := db.Delete(mb.b.DBKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	return nil
}

// load returns the model stored under given key or nil.
func (mb *modelBucket) load(db remit.ReadOnlyKVStore, key []byte) (Model, error) {
	if len(mb.indexes) == 0 {
		ok, err := db.Has(mb.b.DBKey(key))
		if err != nil || !ok {
			return nil, err
		}
		// Without indexes the previous value content is not needed.
		return reflect.New(mb.model).Interface().(Model), nil
	}
	m := reflect.New(mb.model).Interface().(Model)
	switch err := mb.One(db, key, m); {
	case err == nil:
		return m, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

func (mb *modelBucket) updateIndexes(db remit.KVStore, key []byte, prev, save Model) error {
	for _, idx := range mb.indexes {
		if err := idx.update(db, key, prev, save); err != nil {
			return err
		}
	}
	return nil
}

// Register registers this bucket and all indexes.
// You can define a name here for queries, which is
// different than the bucket name used to prefix the data
func (mb *modelBucket) Register(name string, r remit.QueryRouter) {
	if name == "" {
		name = mb.b.name
	}
	root := "/" + name
	r.Register(root, mb.b)
	for iname, idx := range mb.indexes {
		r.Register(root+"/"+iname, indexQuery{idx: idx, bucket: mb.b})
	}
}

// indexQuery resolves an index value into all indexed models.
type indexQuery struct {
	idx    index
	bucket Bucket
}

func (q indexQuery) Query(db remit.ReadOnlyKVStore, mod string, data []byte) ([]remit.Model, error) {
	if mod != remit.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
	pks, err := q.idx.keys(db, data)
	if err != nil {
		return nil, err
	}
	var res []remit.Model
	for _, pk := range pks {
		models, err := q.bucket.Query(db, remit.KeyQueryMod, pk)
		if err != nil {
			return nil, err
		}
		res = append(res, models...)
	}
	return res, nil
}
