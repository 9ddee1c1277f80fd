package store

import remit "github.com/iov-one/remit"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = remit.ReadOnlyKVStore
	SetDeleter       = remit.SetDeleter
	KVStore          = remit.KVStore
	Batch            = remit.Batch
	Iterator         = remit.Iterator
	CacheableKVStore = remit.CacheableKVStore
	KVCacheWrap      = remit.KVCacheWrap
	CommitKVStore    = remit.CommitKVStore
	CommitID         = remit.CommitID
	Model            = remit.Model
)
