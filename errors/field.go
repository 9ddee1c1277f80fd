package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of a message or configuration attribute to err.
// Nil is returned for a nil err. Nested attributes use dot notation, for
// example Policy.BasisPoints.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, name: name, desc: description}
}

// AppendField clubs a field error together with errs. Both arguments can be
// nil, so validation can be written as a sequence of appends.
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

// FieldErrors returns all errors that were created for the attribute name.
// Multi errors are searched recursively.
func FieldErrors(err error, name string) []error {
	var res []error
	for !isNilErr(err) {
		switch e := err.(type) {
		case fielder:
			if e.Field() == name {
				return append(res, err)
			}
		case unpacker:
			for _, child := range e.Unpack() {
				res = append(res, FieldErrors(child, name)...)
			}
			return res
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return res
}

type fieldError struct {
	parent error
	name   string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc != "" {
		return fmt.Sprintf("field %q: %s: %s", e.name, e.desc, e.parent)
	}
	return fmt.Sprintf("field %q: %s", e.name, e.parent)
}

func (e *fieldError) Cause() error  { return e.parent }
func (e *fieldError) Field() string { return e.name }

type fielder interface {
	Field() string
}
