package ledger

import (
	"context"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/gconf"
)

const optKey = "ledger"

// GenesisAccount is used to parse the json from genesis file. Every
// account balance is counted as a deposit.
type GenesisAccount struct {
	Address remit.Address `json:"address"`
	Amount  uint64        `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct {
	Ctrl Controller
}

var _ remit.Initializer = (*Initializer)(nil)

// FromGenesis stores the "conf.ledger" configuration and credits all
// accounts listed under "ledger".
func (i *Initializer) FromGenesis(opts remit.Options, db remit.KVStore) error {
	if err := gconf.InitConfig(db, opts, pkg, &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	ctrl := i.Ctrl
	if ctrl == nil {
		ctrl = NewController(NopPayer{})
	}
	for n, a := range accts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", n)
		}
		if err := ctrl.Deposit(genesisCtx, db, a.Address, a.Amount); err != nil {
			return errors.Wrapf(err, "account %s", a.Address)
		}
	}
	return nil
}

// genesisCtx is used for the deposits made while loading the genesis. They
// never pay out, so no block time is needed.
var genesisCtx = remit.WithLogInfo(context.Background(), "module", "ledger")
