package remittest

import (
	"context"
	"io/ioutil"
	"os"
	"testing"
	"time"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/store/iavl"
)

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data.
// This implementation should be used instead of MemStore when you want the
// exact same storage implementation as the production instance is using.
func CommitKVStore(t testing.TB) (db remit.CommitKVStore, cleanup func()) {
	dbpath, err := ioutil.TempDir("", "remittest")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}
	cs := iavl.NewCommitStore(dbpath, "db")
	if err := cs.LoadLatestVersion(); err != nil {
		t.Fatalf("cannot load store: %s", err)
	}
	return cs, func() {
		cs.Close()
		os.RemoveAll(dbpath)
	}
}

// Ctx returns a context with the block time set to now. Use it in tests of
// the time dependent operations.
func Ctx(now time.Time) remit.Context {
	return remit.WithBlockTime(remit.WithHeight(context.Background(), 1), now)
}
