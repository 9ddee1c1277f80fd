/*
Command remitcli operates a remittance ledger kept in a local directory.

Every command opens the ledger, executes a single operation and, when the
state was changed, commits a new version before exiting.

  $ remitcli init -genesis genesis.json
  $ remitcli deposit -from 0C3D... -amount 5000
  $ remitcli commit-secret -secret "first password"
  $ remitcli fund-new-ticket -from 0C3D... -beneficiary 8AE1... \
      -digest1 ... -digest2 ... -amount 2000 -offset 3600
*/
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
)

// commands is a register of all availables commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// When a cmd function is called it is given stdin, stdout and command line
// arguments except the program name and this command name. It is the
// responsibility of the command function to parse the arguments. Use
// os.Stderr to write error messages.
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"audit":               cmdAudit,
	"balance":             cmdBalance,
	"cancel-ticket":       cmdCancelTicket,
	"commission":          cmdCommission,
	"commit-secret":       cmdCommitSecret,
	"create-ticket":       cmdCreateTicket,
	"deposit":             cmdDeposit,
	"extend-deadline":     cmdExtendDeadline,
	"fund-new-ticket":     cmdFundNewTicket,
	"fund-ticket":         cmdFundTicket,
	"init":                cmdInit,
	"query":               cmdQuery,
	"relay-forward":       cmdRelayForward,
	"release-ticket":      cmdReleaseTicket,
	"ticket-info":         cmdTicketInfo,
	"version":             cmdVersion,
	"withdraw":            cmdWithdraw,
	"withdraw-commission": cmdWithdrawCommission,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the remittance ledger.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := safeRun(run, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// safeRun reports a panic of the storage layer as a regular error.
func safeRun(run func(io.Reader, io.Writer, []string) error, args []string) (err error) {
	defer errors.Recover(&err)
	return run(os.Stdin, os.Stdout, args)
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, remit.Version())
	return nil
}
