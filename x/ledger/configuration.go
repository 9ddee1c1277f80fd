package ledger

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/gconf"
)

const pkg = "ledger"

// Configuration names the privileged roles of the deployment.
type Configuration struct {
	// Owner is allowed to change the configuration and to extend ticket
	// deadlines. Optional.
	Owner remit.Address `json:"owner"`
	// CommissionBeneficiary is the only address allowed to withdraw from
	// the commission pool.
	CommissionBeneficiary remit.Address `json:"commission_beneficiary"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner address")
		}
	}
	if len(c.CommissionBeneficiary) == 0 {
		return errors.Wrap(errors.ErrEmpty, "commission beneficiary missing")
	}
	if err := c.CommissionBeneficiary.Validate(); err != nil {
		return errors.Wrap(err, "commission beneficiary")
	}
	return nil
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, pkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load ledger configuration")
	}
	return &conf, nil
}

// Owner returns the owner of the deployment. It can be used as a
// gconf.OwnerFunc.
func Owner(db remit.ReadOnlyKVStore) (remit.Address, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	return conf.Owner, nil
}

var _ gconf.OwnerFunc = Owner
