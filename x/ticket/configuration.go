package ticket

import (
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/gconf"
	"github.com/iov-one/remit/x/commitment"
)

const pkg = "ticket"

// Configuration of the ticket extension.
type Configuration struct {
	// Scheme is the name of the commitment scheme used to verify secrets.
	Scheme string `json:"scheme"`
	// MaxDeadlineOffset is the longest time, in seconds, a ticket can be
	// funded for. Zero means no limit.
	MaxDeadlineOffset int64 `json:"max_deadline_offset"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	if _, err := commitment.SchemeByName(c.Scheme); err != nil {
		return errors.Wrap(err, "scheme")
	}
	if c.MaxDeadlineOffset < 0 {
		return errors.Wrap(errors.ErrInput, "max deadline offset must not be negative")
	}
	return nil
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, pkg, &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return &Configuration{Scheme: commitment.Keccak256Name}, nil
	default:
		return nil, errors.Wrap(err, "load ticket configuration")
	}
}

// LoadScheme returns the configured commitment scheme.
func LoadScheme(db gconf.ReadStore) (commitment.Scheme, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	return commitment.SchemeByName(conf.Scheme)
}

func (c *Configuration) validateOffset(offset int64) error {
	if offset <= 0 {
		return errors.Wrap(errors.ErrInput, "deadline offset must be positive")
	}
	if c.MaxDeadlineOffset != 0 && offset > c.MaxDeadlineOffset {
		return errors.Wrapf(errors.ErrInput, "deadline offset exceeds %d", c.MaxDeadlineOffset)
	}
	return nil
}
