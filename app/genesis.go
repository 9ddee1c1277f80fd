package app

import (
	"encoding/json"
	"io/ioutil"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
)

// Genesis file format. AppState holds one section per extension, the
// configuration of all extensions lives in the "conf" section.
type Genesis struct {
	ChainID  string        `json:"chain_id"`
	AppState remit.Options `json:"app_state"`
}

// LoadGenesis reads the genesis file at given path.
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis file: %s", err)
	}
	if !remit.IsValidChainID(gen.ChainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %q", gen.ChainID)
	}
	return &gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...remit.Initializer) remit.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []remit.Initializer
}

// FromGenesis passes opts to all Initializers in the list, aborting at the
// first error.
func (c chainInitializer) FromGenesis(opts remit.Options, kv remit.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
