package ticket

import (
	"context"
	"encoding/hex"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/gconf"
)

const optKey = "tickets"

// GenesisTicket is an open ticket declared in the genesis file. Digests are
// hex encoded.
//
// A deployment with a single genesis ticket and no other tickets is the
// fixed setup of one beneficiary exchange and two passwords.
type GenesisTicket struct {
	Beneficiary remit.Address `json:"beneficiary"`
	Digest1     string        `json:"digest1"`
	Digest2     string        `json:"digest2"`
	Memo        string        `json:"memo"`
}

// Initializer loads the ticket configuration and opens genesis tickets.
type Initializer struct{}

var _ remit.Initializer = Initializer{}

// FromGenesis reads "conf.ticket" and the "tickets" list. Configuration is
// optional, the keccak256 scheme without a deadline limit is the default.
func (Initializer) FromGenesis(opts remit.Options, db remit.KVStore) error {
	err := gconf.InitConfig(db, opts, pkg, &Configuration{})
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		if err := gconf.Save(db, pkg, &Configuration{}); err != nil {
			return err
		}
	default:
		return err
	}

	var tickets []GenesisTicket
	if err := opts.ReadOptions(optKey, &tickets); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	ctrl := NewController(nil)
	ctx := remit.WithLogInfo(context.Background(), "module", "ticket")
	for i, t := range tickets {
		d1, err := hex.DecodeString(t.Digest1)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "ticket %d digest1: %s", i, err)
		}
		d2, err := hex.DecodeString(t.Digest2)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "ticket %d digest2: %s", i, err)
		}
		if _, err := ctrl.Create(ctx, db, t.Beneficiary, d1, d2, t.Memo); err != nil {
			return errors.Wrapf(err, "ticket %d", i)
		}
	}
	return nil
}
