package orm

import (
	"github.com/iov-one/remit/errors"
	amino "github.com/tendermint/go-amino"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	// Validate returns error if the model is not in a valid state to
	// save to the db (eg. field missing, out of range, ...)
	Validate() error
}

// cdc encodes all models. Models are plain structs, so no registration of
// concrete types is needed.
var cdc = amino.NewCodec()

// Codec returns the codec used to serialize models. Use it to encode a
// model for the host, for example as a JSON query result.
func Codec() *amino.Codec {
	return cdc
}

// Marshal serializes given model with a binary encoding. The encoding is
// length prefixed, so that a model with all fields zero is never stored as
// an empty value.
func Marshal(m Model) ([]byte, error) {
	bz, err := cdc.MarshalBinaryLengthPrefixed(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot marshal %T: %s", m, err)
	}
	return bz, nil
}

// Unmarshal deserializes raw data into given model. Destination must be a
// pointer.
func Unmarshal(raw []byte, dest Model) error {
	if err := cdc.UnmarshalBinaryLengthPrefixed(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}
