package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/x/commitment"
)

// lockFlags describe the two commitments of a ticket. Each commitment is
// given either as a digest or as a secret that is hashed with the
// configured scheme.
type lockFlags struct {
	digest1 *[]byte
	digest2 *[]byte
	secret1 *string
	secret2 *string
}

func addLockFlags(fl *flag.FlagSet) lockFlags {
	return lockFlags{
		digest1: flHex(fl, "digest1", "", "Hex encoded digest of the first secret."),
		digest2: flHex(fl, "digest2", "", "Hex encoded digest of the second secret."),
		secret1: fl.String("secret1", "", "First secret. Used when no digest1 is given."),
		secret2: fl.String("secret2", "", "Second secret. Used when no digest2 is given."),
	}
}

func (f lockFlags) digests(s *session) ([]byte, []byte, error) {
	d1, err := digest(s, *f.digest1, *f.secret1)
	if err != nil {
		return nil, nil, errors.Wrap(err, "first commitment")
	}
	d2, err := digest(s, *f.digest2, *f.secret2)
	if err != nil {
		return nil, nil, errors.Wrap(err, "second commitment")
	}
	return d1, d2, nil
}

func digest(s *session, digest []byte, secret string) ([]byte, error) {
	if len(digest) != 0 {
		return digest, nil
	}
	if secret == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "digest or secret required")
	}
	return s.CommitSecret([]byte(secret))
}

func cmdCreateTicket(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Open a ticket for the beneficiary, locked by two commitments. The ticket
identifier is printed.
		`)
		fl.PrintDefaults()
	}
	var (
		lf            = addLedgerFlags(fl)
		lock          = addLockFlags(fl)
		fromFl        = flAddress(fl, "from", "", "Address of the caller.")
		beneficiaryFl = flAddress(fl, "beneficiary", "", "Address of the relay agent the ticket is released to.")
		memoFl        = fl.String("memo", "", "Optional description of the remittance.")
	)
	fl.Parse(args)
	if err := required(fl, "from", "beneficiary"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		d1, d2, err := lock.digests(s)
		if err != nil {
			return err
		}
		id, err := s.CreateTicket(*fromFl, *beneficiaryFl, d1, d2, *memoFl)
		if err != nil {
			return err
		}
		fmt.Fprintln(output, hex.EncodeToString(id))
		return nil
	})
}

func cmdFundTicket(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Lock the caller's funds in an open ticket until the deadline.
		`)
		fl.PrintDefaults()
	}
	var (
		lf       = addLedgerFlags(fl)
		fromFl   = flAddress(fl, "from", "", "Address of the caller.")
		idFl     = flHex(fl, "id", "", "Hex encoded ticket identifier.")
		amountFl = fl.Uint64("amount", 0, "Amount of units locked.")
		offsetFl = fl.Int64("offset", 0, "Number of seconds from now until the ticket expires.")
	)
	fl.Parse(args)
	if err := required(fl, "from", "id"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		return s.FundTicket(*fromFl, *idFl, *amountFl, *offsetFl)
	})
}

func cmdFundNewTicket(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Open a ticket and lock the caller's funds in it. The ticket identifier is
printed.
		`)
		fl.PrintDefaults()
	}
	var (
		lf            = addLedgerFlags(fl)
		lock          = addLockFlags(fl)
		fromFl        = flAddress(fl, "from", "", "Address of the caller.")
		beneficiaryFl = flAddress(fl, "beneficiary", "", "Address of the relay agent the ticket is released to.")
		memoFl        = fl.String("memo", "", "Optional description of the remittance.")
		amountFl      = fl.Uint64("amount", 0, "Amount of units locked.")
		offsetFl      = fl.Int64("offset", 0, "Number of seconds from now until the ticket expires.")
	)
	fl.Parse(args)
	if err := required(fl, "from", "beneficiary"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		d1, d2, err := lock.digests(s)
		if err != nil {
			return err
		}
		id, err := s.FundNewTicket(*fromFl, *beneficiaryFl, d1, d2, *memoFl, *amountFl, *offsetFl)
		if err != nil {
			return err
		}
		fmt.Fprintln(output, hex.EncodeToString(id))
		return nil
	})
}

func cmdCancelTicket(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Return the funds of a ticket to its depositor. Only the depositor can cancel.
		`)
		fl.PrintDefaults()
	}
	var (
		lf     = addLedgerFlags(fl)
		fromFl = flAddress(fl, "from", "", "Address of the caller.")
		idFl   = flHex(fl, "id", "", "Hex encoded ticket identifier.")
	)
	fl.Parse(args)
	if err := required(fl, "from", "id"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		return s.CancelTicket(*fromFl, *idFl)
	})
}

func cmdReleaseTicket(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Reveal both secrets of a ticket and pay it to the beneficiary, minus the
commission.
		`)
		fl.PrintDefaults()
	}
	var (
		lf        = addLedgerFlags(fl)
		fromFl    = flAddress(fl, "from", "", "Optional address of the caller.")
		idFl      = flHex(fl, "id", "", "Hex encoded ticket identifier.")
		secret1Fl = fl.String("secret1", "", "First secret.")
		secret2Fl = fl.String("secret2", "", "Second secret.")
	)
	fl.Parse(args)
	if err := required(fl, "id", "secret1", "secret2"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		if err := s.ReleaseTicket(*fromFl, *idFl, []byte(*secret1Fl), []byte(*secret2Fl)); err != nil {
			return err
		}
		t, err := s.Ticket(*idFl)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "released %d to %s, commission %d\n", t.Paid, t.Beneficiary, t.Commission)
		return nil
	})
}

// ticketView is the printed form of a ticket.
type ticketView struct {
	ID          string        `json:"id"`
	State       string        `json:"state"`
	Amount      uint64        `json:"amount"`
	Deadline    string        `json:"deadline,omitempty"`
	Beneficiary remit.Address `json:"beneficiary"`
	Depositor   remit.Address `json:"depositor,omitempty"`
	Digest1     string        `json:"digest1"`
	Digest2     string        `json:"digest2"`
	Memo        string        `json:"memo,omitempty"`
	Commission  uint64        `json:"commission,omitempty"`
	Paid        uint64        `json:"paid,omitempty"`
}

func cmdTicketInfo(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Print a ticket.
		`)
		fl.PrintDefaults()
	}
	var (
		lf   = addLedgerFlags(fl)
		idFl = flHex(fl, "id", "", "Hex encoded ticket identifier.")
	)
	fl.Parse(args)
	if err := required(fl, "id"); err != nil {
		return err
	}

	return view(lf, output, func(s *session) error {
		t, err := s.Ticket(*idFl)
		if err != nil {
			return err
		}
		v := ticketView{
			ID:          hex.EncodeToString(*idFl),
			State:       t.State.String(),
			Amount:      t.Amount,
			Beneficiary: t.Beneficiary,
			Depositor:   t.Depositor,
			Digest1:     hex.EncodeToString(t.Digest1),
			Digest2:     hex.EncodeToString(t.Digest2),
			Memo:        t.Memo,
			Commission:  t.Commission,
			Paid:        t.Paid,
		}
		if !t.Deadline.IsZero() {
			v.Deadline = t.Deadline.String()
		}
		return writeJSON(output, v)
	})
}

func cmdExtendDeadline(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Move the deadline of a funded ticket. Only the owner can extend a deadline.
		`)
		fl.PrintDefaults()
	}
	var (
		lf       = addLedgerFlags(fl)
		fromFl   = flAddress(fl, "from", "", "Address of the caller.")
		idFl     = flHex(fl, "id", "", "Hex encoded ticket identifier.")
		offsetFl = fl.Int64("offset", 0, "Number of seconds from now until the ticket expires.")
	)
	fl.Parse(args)
	if err := required(fl, "from", "id"); err != nil {
		return err
	}

	return mutate(lf, output, func(s *session) error {
		return s.ExtendDeadline(*fromFl, *idFl, *offsetFl)
	})
}

func cmdCommitSecret(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Print the hex encoded digest of a secret. The scheme configured in the ledger
is used unless a scheme is given.
		`)
		fl.PrintDefaults()
	}
	var (
		lf       = addLedgerFlags(fl)
		secretFl = fl.String("secret", "", "Secret to commit to.")
		schemeFl = fl.String("scheme", "", "Optional commitment scheme, keccak256 or sha256.")
	)
	fl.Parse(args)
	if err := required(fl, "secret"); err != nil {
		return err
	}

	if *schemeFl != "" {
		scheme, err := commitment.SchemeByName(*schemeFl)
		if err != nil {
			return err
		}
		fmt.Fprintln(output, hex.EncodeToString(scheme.Commit([]byte(*secretFl))))
		return nil
	}
	return view(lf, output, func(s *session) error {
		d, err := s.CommitSecret([]byte(*secretFl))
		if err != nil {
			return err
		}
		fmt.Fprintln(output, hex.EncodeToString(d))
		return nil
	})
}
