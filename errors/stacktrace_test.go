package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reserve(available, amount uint64) error {
	if amount > available {
		return Wrapf(ErrInsufficientFunds, "available %d, reserve %d", available, amount)
	}
	return nil
}

func TestStackTrace(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"registered error": {
			err:  Wrap(ErrExpired, "deadline"),
			want: "deadline: " + ErrExpired.Error(),
		},
		"created in a helper": {
			err:  reserve(10, 20),
			want: "available 10, reserve 20: " + ErrInsufficientFunds.Error(),
		},
		"standard library error": {
			err:  Wrap(errors.New("disk full"), "commit"),
			want: "commit: disk full",
		},
		"formatted error": {
			err:  Wrap(fmt.Errorf("version %d", 3), "load"),
			want: "load: version 3",
		},
	}

	const thisFile = "errors/stacktrace_test.go"

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			require.Error(t, tc.err)
			assert.Equal(t, tc.want, tc.err.Error())
			assert.NotNil(t, stackTrace(tc.err))

			full := fmt.Sprintf("%+v", tc.err)
			assert.Contains(t, full, thisFile)
			assert.Contains(t, full, tc.want)
			assert.NotContains(t, full, "github.com/iov-one/remit/errors.Wrap\n")

			short := fmt.Sprintf("%v", tc.err)
			assert.True(t, strings.HasPrefix(short, tc.want))
			assert.NotContains(t, short, "\n")
			// The frame points at the caller of Wrap, not at Wrap.
			assert.Contains(t, short, thisFile+":")
		})
	}
}
