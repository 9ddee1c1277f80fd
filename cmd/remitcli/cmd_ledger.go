package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/remit/app"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Initialize the ledger state from a genesis file. A ledger can be initialized
only once.
		`)
		fl.PrintDefaults()
	}
	var (
		lf        = addLedgerFlags(fl)
		genesisFl = fl.String("genesis", "genesis.json", "Path to the genesis file.")
	)
	fl.Parse(args)

	gen, err := app.LoadGenesis(*genesisFl)
	if err != nil {
		return err
	}
	s, err := lf.open(output)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.InitChain(gen); err != nil {
		return err
	}
	if err := s.commit(); err != nil {
		return err
	}
	fmt.Fprintf(output, "initialized %s\n", gen.ChainID)
	return nil
}

func cmdDeposit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Credit funds sent by the caller to the caller's account.
		`)
		fl.PrintDefaults()
	}
	var (
		lf       = addLedgerFlags(fl)
		fromFl   = flAddress(fl, "from", "", "Address of the caller.")
		amountFl = fl.Uint64("amount", 0, "Amount of units deposited.")
	)
	fl.Parse(args)
	if err := required(fl, "from"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		return s.Deposit(*fromFl, *amountFl)
	})
}

func cmdWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Pay funds from the caller's available balance to the caller.
		`)
		fl.PrintDefaults()
	}
	var (
		lf       = addLedgerFlags(fl)
		fromFl   = flAddress(fl, "from", "", "Address of the caller.")
		amountFl = fl.Uint64("amount", 0, "Amount of units withdrawn.")
	)
	fl.Parse(args)
	if err := required(fl, "from"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		return s.Withdraw(*fromFl, *amountFl)
	})
}

func cmdBalance(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Print the available and the reserved funds of an account.
		`)
		fl.PrintDefaults()
	}
	var (
		lf        = addLedgerFlags(fl)
		accountFl = flAddress(fl, "account", "", "Address of the account.")
	)
	fl.Parse(args)
	if err := required(fl, "account"); err != nil {
		return err
	}

	return view(lf, output, func(s *session) error {
		acct, err := s.Account(*accountFl)
		if err != nil {
			return err
		}
		return writeJSON(output, acct)
	})
}

func cmdCommission(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Print the funds collected in the commission pool.
		`)
		fl.PrintDefaults()
	}
	lf := addLedgerFlags(fl)
	fl.Parse(args)

	return view(lf, output, func(s *session) error {
		pool, err := s.CommissionPoolBalance()
		if err != nil {
			return err
		}
		fmt.Fprintln(output, pool)
		return nil
	})
}

func cmdWithdrawCommission(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Pay funds from the commission pool to the commission beneficiary. Only the
commission beneficiary can withdraw.
		`)
		fl.PrintDefaults()
	}
	var (
		lf       = addLedgerFlags(fl)
		fromFl   = flAddress(fl, "from", "", "Address of the caller.")
		amountFl = fl.Uint64("amount", 0, "Amount of units withdrawn.")
	)
	fl.Parse(args)
	if err := required(fl, "from"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		return s.WithdrawCommission(*fromFl, *amountFl)
	})
}

func cmdRelayForward(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Pay funds from the caller's available balance to the final recipient of a
remittance.
		`)
		fl.PrintDefaults()
	}
	var (
		lf          = addLedgerFlags(fl)
		fromFl      = flAddress(fl, "from", "", "Address of the caller.")
		recipientFl = flAddress(fl, "recipient", "", "Address of the final recipient.")
		amountFl    = fl.Uint64("amount", 0, "Amount of units forwarded.")
	)
	fl.Parse(args)
	if err := required(fl, "from", "recipient"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		return s.RelayForward(*fromFl, *recipientFl, *amountFl)
	})
}

// auditView is the printed form of an audit.
type auditView struct {
	Available           uint64 `json:"available"`
	Reserved            uint64 `json:"reserved"`
	Commission          uint64 `json:"commission"`
	Deposited           uint64 `json:"deposited"`
	Withdrawn           uint64 `json:"withdrawn"`
	CommissionWithdrawn uint64 `json:"commission_withdrawn"`
	Forwarded           uint64 `json:"forwarded"`
	Held                uint64 `json:"held"`
}

func cmdAudit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Verify that the funds held by the ledger match the funds that entered and
left it. The command fails if they do not.
		`)
		fl.PrintDefaults()
	}
	lf := addLedgerFlags(fl)
	fl.Parse(args)

	return view(lf, output, func(s *session) error {
		a, err := s.Audit()
		if err != nil {
			return err
		}
		return writeJSON(output, auditView{
			Available:           a.Available,
			Reserved:            a.Reserved,
			Commission:          a.Commission,
			Deposited:           a.Deposited,
			Withdrawn:           a.Withdrawn,
			CommissionWithdrawn: a.CommissionWithdrawn,
			Forwarded:           a.Forwarded,
			Held:                a.Held(),
		})
	})
}

// mutate runs fn on the initialized ledger and commits the changes.
func mutate(lf ledgerFlags, output io.Writer, fn func(*session) error) error {
	s, err := lf.open(output)
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.initialized(); err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return s.commit()
}

// view runs fn on the initialized ledger. No changes are persisted.
func view(lf ledgerFlags, output io.Writer, fn func(*session) error) error {
	s, err := lf.open(output)
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.initialized(); err != nil {
		return err
	}
	return fn(s)
}
