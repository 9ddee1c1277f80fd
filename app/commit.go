package app

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
)

// CommitStore keeps the committed state together with a cache of the work
// in progress. Delivered transactions write to the deliver cache, checks
// run on their own cache that is reset on every commit.
type CommitStore struct {
	committed remit.CommitKVStore
	deliver   remit.KVCacheWrap
	check     remit.KVCacheWrap
}

// NewCommitStore loads the latest version of the store and sets up the
// deliver and check caches.
func NewCommitStore(store remit.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (remit.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit flushes the deliver cache to the underlying store and persists a
// new version. Both caches are recreated afterwards.
func (cs *CommitStore) Commit() (remit.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return remit.CommitID{}, err
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() remit.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() remit.CacheableKVStore {
	return cs.deliver
}

//------- storing chainID ---------

// _rm: is a prefix for internal data of the application
const chainIDKey = "_rm:chainID"

// loadChainID returns the chain id stored if any
func loadChainID(kv remit.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv remit.KVStore, chainID string) error {
	if !remit.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrImmutable, "chain id set at genesis")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
