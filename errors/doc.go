/*
Package errors implements the error taxonomy of the remittance ledger.

Each failure is categorized by one of the root errors declared with
Register. Root errors carry a unique code so that a host can distinguish
failures without parsing messages. Extensions may declare their own root
errors, as x/ticket does, but should reuse the errors of this package
whenever the meaning fits.

Create errors with Wrap, Wrapf or ErrXyz.New at the point where the failure
is detected. This attaches a stack trace once. Wrapping multiple times keeps
the first stack trace only.

Once you have an error, you can use fmt.Printf/Sprintf to get more context
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created

Use ErrXyz.Is(err) to test the kind of an error. It unwraps the causes and
multi errors created with Append.
*/
package errors
