package commission

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/gconf"
)

const pkg = "commission"

// Configuration selects the commission policy. Only one of the fields can be
// set. When neither is set no commission is taken.
type Configuration struct {
	// Fixed is the fee taken from every release.
	Fixed uint64 `json:"fixed"`
	// BasisPoints is the percentage of every release, in 1/100 of a
	// percent.
	BasisPoints uint32 `json:"basis_points"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	if c.Fixed != 0 && c.BasisPoints != 0 {
		return errors.Wrap(errors.ErrState, "only one commission policy can be configured")
	}
	if c.BasisPoints > MaxBasisPoints {
		return errors.Wrapf(errors.ErrInput, "basis points must not exceed %d", MaxBasisPoints)
	}
	return nil
}

// NewPolicy returns the policy described by the configuration.
func NewPolicy(c Configuration) (Policy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.BasisPoints != 0 {
		return Percentage(c.BasisPoints), nil
	}
	return Fixed(c.Fixed), nil
}

// LoadPolicy returns the policy configured in the store.
func LoadPolicy(db gconf.ReadStore) (Policy, error) {
	var c Configuration
	if err := gconf.Load(db, pkg, &c); err != nil {
		return nil, errors.Wrap(err, "load commission configuration")
	}
	return NewPolicy(c)
}

// Initializer stores the commission configuration from the genesis file.
type Initializer struct{}

var _ remit.Initializer = Initializer{}

// FromGenesis reads the "conf.commission" section. A deployment without it
// takes no commission.
func (Initializer) FromGenesis(opts remit.Options, db remit.KVStore) error {
	var c Configuration
	err := gconf.InitConfig(db, opts, pkg, &c)
	switch {
	case err == nil:
		return nil
	case errors.ErrNotFound.Is(err):
		return gconf.Save(db, pkg, &Configuration{})
	default:
		return err
	}
}
