/*
Package assert provides the small set of assertions used by the ledger
tests. Every helper stops the test on the first failure.
*/
package assert

import (
	"reflect"
	"testing"

	"github.com/iov-one/remit/errors"
)

// Tester is the part of testing.TB the helpers depend on.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test if value is not nil. A typed nil, for example a nil
// *Ticket stored in an interface, is nil as well.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if isNil(value) {
		return
	}
	// %+v prints the stack trace of errors created by the errors package.
	t.Fatalf("want a nil value, got %+v", value)
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal fails the test if want and got are not deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
}

// Panics fails the test if fn returns without panicking.
func Panics(t Tester, fn func()) {
	t.Helper()
	if !panics(fn) {
		t.Fatal("panic expected")
	}
}

func panics(fn func()) (panicked bool) {
	defer func() {
		panicked = recover() != nil
	}()
	fn()
	return false
}

// FieldError fails the test unless err carries exactly one error for the
// field and that error is of the wanted kind. A nil want asserts that the
// field has no error at all.
func FieldError(t testing.TB, err error, field string, want *errors.Error) {
	t.Helper()

	errs := errors.FieldErrors(err, field)
	if want == nil {
		if len(errs) != 0 {
			t.Fatalf("want no %q field error, got %d: %v", field, len(errs), errs)
		}
		return
	}

	switch len(errs) {
	case 0:
		t.Fatalf("no %q field error found in %v", field, err)
	case 1:
		if !want.Is(errs[0]) {
			t.Fatalf("want %q field error of kind %q, got %q", field, want, errs[0])
		}
	default:
		for i, e := range errs {
			t.Logf("\terror %d: %q", i+1, e)
		}
		t.Fatalf("want one %q field error, got %d", field, len(errs))
	}
}

// IsErr fails the test unless got is of the kind of want. Two nil errors
// match.
func IsErr(t testing.TB, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if kind, ok := want.(interface{ Is(error) bool }); ok && kind.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
