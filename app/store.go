package app

import (
	"fmt"
	"strings"
	"time"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp contains a data store and all info needed to perform queries
// and to initialize the state from the genesis.
//
// It should be embedded in another struct for Check and Deliver.
type StoreApp struct {
	logger log.Logger

	// name is reported in the logs
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	// Code to initialize from a genesis file
	initializer remit.Initializer

	// How to handle queries
	queryRouter remit.QueryRouter

	// chainID is loaded from db in initialization
	// saved once in InitChain
	chainID string

	// baseContext contains context info that is valid for
	// lifetime of this app (eg. chainID)
	baseContext remit.Context
}

// NewStoreApp initializes this app into a ready state with some defaults.
func NewStoreApp(name string, store remit.CommitKVStore, queryRouter remit.QueryRouter, baseContext remit.Context) (*StoreApp, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	s := &StoreApp{
		name:        name,
		store:       cs,
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	chainID, err := loadChainID(s.DeliverStore())
	if err != nil {
		return nil, err
	}
	if chainID != "" {
		s.chainID = chainID
		s.baseContext = remit.WithChainID(s.baseContext, chainID)
	}
	return s, nil
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit is used to set the init function we call
func (s *StoreApp) WithInit(init remit.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger on the StoreApp and returns it,
// to make it easy to chain in initialization
//
// also sets baseContext logger
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = remit.WithLogger(s.baseContext, logger)
	s.logger = logger
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// DeliverStore returns the current deliver cache for methods
func (s *StoreApp) DeliverStore() remit.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current check cache for methods
func (s *StoreApp) CheckStore() remit.CacheableKVStore {
	return s.store.CheckStore()
}

// InitChain stores the chain id and loads the application state from the
// genesis. It can be called only once for the lifetime of a store.
func (s *StoreApp) InitChain(gen *Genesis) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrImmutable, "app state previously loaded for chain %s", s.chainID)
	}
	if s.initializer == nil {
		return errors.Wrap(errors.ErrHuman, "no initializer")
	}
	if len(gen.AppState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis")
	}

	db := s.DeliverStore().CacheWrap()
	if err := saveChainID(db, gen.ChainID); err != nil {
		db.Discard()
		return err
	}
	if err := s.initializer.FromGenesis(gen.AppState, db); err != nil {
		db.Discard()
		return errors.Wrap(err, "genesis")
	}
	if err := db.Write(); err != nil {
		return err
	}

	s.chainID = gen.ChainID
	s.baseContext = remit.WithChainID(s.baseContext, gen.ChainID)
	s.logger.Info("Chain initialized", "app", s.name, "chain_id", gen.ChainID)
	return nil
}

// BlockContext returns the context of the next block processed at the
// given time.
func (s *StoreApp) BlockContext(now time.Time) (remit.Context, error) {
	info, err := s.store.CommitInfo()
	if err != nil {
		return nil, err
	}
	ctx := remit.WithHeight(s.baseContext, info.Version+1)
	return remit.WithBlockTime(ctx, now), nil
}

/*
Query gets data from the committed state.

Path may be "/<bucket>", or "/<bucket>/<index>".
It may be followed by "?prefix" to make a prefix query.
*/
func (s *StoreApp) Query(path string, data []byte) ([]remit.Model, error) {
	path, mod := splitPath(path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "unexpected query path %q", path)
	}
	db := s.store.committed.CacheWrap()
	defer db.Discard()
	return qh.Query(db, mod, data)
}

// QueryPaths returns all paths Query accepts, without modifiers.
func (s *StoreApp) QueryPaths() []string {
	return s.queryRouter.Paths()
}

// splitPath splits out the real path along with the query
// modifier (everything after the ?)
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}

// Commit persists all delivered changes as a new version.
func (s *StoreApp) Commit() (remit.CommitID, error) {
	commitID, err := s.store.Commit()
	if err != nil {
		return commitID, errors.Wrap(err, "commit")
	}
	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)
	return commitID, nil
}

// CommitInfo returns the version and the root hash of the latest commit.
func (s *StoreApp) CommitInfo() (remit.CommitID, error) {
	return s.store.CommitInfo()
}
