package errors

import (
	"errors"
	"fmt"
)

const (
	// SuccessCode is returned for a nil error.
	SuccessCode uint32 = 0

	// All unclassified errors that do not provide a code are clubbed
	// under an internal error code and a generic message instead of
	// detailed error string.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

type coder interface {
	Code() uint32
}

// Code returns the code of the root error carried by given error. Errors
// that do not wrap a registered root error are internal and return code 1.
// A multi error returns the code of the first of its errors.
func Code(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}

		if u, ok := err.(unpacker); ok {
			if errs := u.Unpack(); len(errs) > 0 {
				err = errs[0]
				continue
			}
			return internalCode
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// Info returns the code and the log message that can be exposed to the
// host. Messages of errors without a code are replaced with a generic
// "internal error" text unless running in a debug mode.
func Info(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessCode, ""
	}

	code := Code(err)
	if debug {
		// Try to trigger full information formatting. This
		// might produce a stacktrace.
		return code, fmt.Sprintf("%+v", err)
	}
	if code == internalCode || code == ErrPanic.code {
		return internalCode, internalLog
	}
	return code, err.Error()
}

// Redact replace all errors that do not initialize with a registered error
// with a generic internal error instance. This function is supposed to hide
// implementation details errors and leave only those that this module
// originates.
//
// This is a no-operation function when running in debug mode.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) {
		return errors.New(internalLog)
	}
	if Code(err) == internalCode {
		return errors.New(internalLog)
	}
	return err
}
