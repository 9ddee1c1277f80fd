package app

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/remittest/assert"
	"github.com/iov-one/remit/store"
)

func TestLoadGenesis(t *testing.T) {
	dir, err := ioutil.TempDir("", "genesis")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		assert.Nil(t, ioutil.WriteFile(path, []byte(content), 0600))
		return path
	}

	cases := map[string]struct {
		path    string
		wantErr *errors.Error
		chainID string
	}{
		"valid file": {
			path:    write("valid.json", `{"chain_id": "test-chain", "app_state": {"dummy": "value"}}`),
			chainID: "test-chain",
		},
		"missing file": {
			path:    filepath.Join(dir, "missing.json"),
			wantErr: errors.ErrInput,
		},
		"malformed json": {
			path:    write("malformed.json", `{"chain_id": `),
			wantErr: errors.ErrInput,
		},
		"invalid chain id": {
			path:    write("chain.json", `{"chain_id": "x", "app_state": {}}`),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			gen, err := LoadGenesis(tc.path)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.chainID, gen.ChainID)
				var value string
				assert.Nil(t, gen.AppState.ReadOptions("dummy", &value))
				assert.Equal(t, "value", value)
			}
		})
	}
}

const dummyKey = "dummy"

type dummyInit struct{}

func (dummyInit) FromGenesis(opts remit.Options, kv remit.KVStore) error {
	var value string
	if err := opts.ReadOptions(dummyKey, &value); err != nil {
		return err
	}
	return kv.Set([]byte(dummyKey), []byte(value))
}

type countInit struct {
	called int
	err    error
}

func (c *countInit) FromGenesis(opts remit.Options, kv remit.KVStore) error {
	c.called++
	return c.err
}

func TestChainInitializers(t *testing.T) {
	opts := remit.Options{dummyKey: []byte(`"hello"`)}

	first := &countInit{}
	second := &countInit{err: errors.ErrInput}
	third := &countInit{}

	db := store.MemStore()
	err := ChainInitializers(first, dummyInit{}, second, third).FromGenesis(opts, db)
	assert.IsErr(t, errors.ErrInput, err)
	assert.Equal(t, 1, first.called)
	assert.Equal(t, 1, second.called)
	assert.Equal(t, 0, third.called)

	value, err := db.Get([]byte(dummyKey))
	assert.Nil(t, err)
	assert.Equal(t, []byte("hello"), value)
}
