package app

import (
	"context"
	"testing"
	"time"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/orm"
	"github.com/iov-one/remit/remittest/assert"
	"github.com/iov-one/remit/store/iavl"
)

func newStoreApp(t *testing.T) *StoreApp {
	t.Helper()
	qr := remit.NewQueryRouter()
	qr.Register("/dummy", orm.NewBucket(dummyKey))
	s, err := NewStoreApp("test", iavl.MockCommitStore(), qr, context.Background())
	assert.Nil(t, err)
	return s
}

func TestStoreAppInitChain(t *testing.T) {
	s := newStoreApp(t)

	// without an initializer nothing can be loaded
	err := s.InitChain(&Genesis{ChainID: "test-chain", AppState: remit.Options{dummyKey: []byte(`"x"`)}})
	assert.IsErr(t, errors.ErrHuman, err)

	s = s.WithInit(ChainInitializers(dummyInit{}, &countInit{err: errors.ErrInput}))
	err = s.InitChain(&Genesis{ChainID: "test-chain", AppState: remit.Options{dummyKey: []byte(`"x"`)}})
	assert.IsErr(t, errors.ErrInput, err)
	// failed genesis leaves nothing behind
	assert.Equal(t, "", s.GetChainID())
	value, err := s.DeliverStore().Get([]byte(dummyKey))
	assert.Nil(t, err)
	assert.Nil(t, value)

	s = s.WithInit(dummyInit{})
	err = s.InitChain(&Genesis{ChainID: "test-chain"})
	assert.IsErr(t, errors.ErrEmpty, err)

	err = s.InitChain(&Genesis{ChainID: "test-chain", AppState: remit.Options{dummyKey: []byte(`"x"`)}})
	assert.Nil(t, err)
	assert.Equal(t, "test-chain", s.GetChainID())

	err = s.InitChain(&Genesis{ChainID: "other-chain", AppState: remit.Options{dummyKey: []byte(`"x"`)}})
	assert.IsErr(t, errors.ErrImmutable, err)
}

func TestStoreAppCommitAndQuery(t *testing.T) {
	s := newStoreApp(t).WithInit(dummyInit{})
	err := s.InitChain(&Genesis{ChainID: "test-chain", AppState: remit.Options{dummyKey: []byte(`"x"`)}})
	assert.Nil(t, err)

	key := orm.NewBucket(dummyKey).DBKey([]byte("k"))
	assert.Nil(t, s.DeliverStore().Set(key, []byte("v")))

	// nothing is visible until committed
	res, err := s.Query("/dummy", []byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))

	id, err := s.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)

	res, err = s.Query("/dummy", []byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []remit.Model{remit.Pair(key, []byte("v"))}, res)

	res, err = s.Query("/dummy?prefix", nil)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))

	_, err = s.Query("/unknown", nil)
	assert.IsErr(t, errors.ErrNotFound, err)

	now := time.Date(2019, time.March, 14, 10, 0, 0, 0, time.UTC)
	ctx, err := s.BlockContext(now)
	assert.Nil(t, err)
	height, _ := remit.GetHeight(ctx)
	assert.Equal(t, int64(2), height)
	assert.Equal(t, "test-chain", remit.GetChainID(ctx))
	assert.Equal(t, remit.AsUnixTime(now), remit.MustBlockTime(ctx))
}

func TestSplitPath(t *testing.T) {
	path, mod := splitPath("/tickets?prefix")
	assert.Equal(t, "/tickets", path)
	assert.Equal(t, "prefix", mod)

	path, mod = splitPath("/tickets")
	assert.Equal(t, "/tickets", path)
	assert.Equal(t, "", mod)
}
