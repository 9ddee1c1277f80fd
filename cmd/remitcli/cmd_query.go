package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/orm"
	"github.com/iov-one/remit/x/ledger"
	"github.com/iov-one/remit/x/ticket"
)

func cmdQuery(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Read committed models of a bucket or of a bucket index. Without a path, all
available paths are listed.

  $ remitcli query -path /tickets/beneficiary -data 8AE1...
		`)
		fl.PrintDefaults()
	}
	var (
		lf       = addLedgerFlags(fl)
		pathFl   = fl.String("path", "", "Bucket or index path, for example /accounts or /tickets/depositor.")
		dataFl   = flHex(fl, "data", "", "Hex encoded key, index value or prefix.")
		prefixFl = fl.Bool("prefix", false, "Return all models with a key starting with data.")
	)
	fl.Parse(args)

	return view(lf, output, func(s *session) error {
		if *pathFl == "" {
			for _, p := range s.QueryPaths() {
				fmt.Fprintln(output, p)
			}
			return nil
		}

		path := *pathFl
		if *prefixFl {
			path += "?prefix"
		}
		models, err := s.Query(path, *dataFl)
		if err != nil {
			return err
		}
		for _, m := range models {
			dest, err := queryModel(*pathFl)
			if err != nil {
				return err
			}
			if err := orm.Unmarshal(m.Value, dest); err != nil {
				return errors.Wrapf(err, "key %X", m.Key)
			}
			fmt.Fprintf(output, "%s\n", hex.EncodeToString(m.Key))
			if err := writeJSON(output, dest); err != nil {
				return err
			}
		}
		return nil
	})
}

// queryModel returns the destination for models returned by path. Index
// paths return the models of their bucket.
func queryModel(path string) (orm.Model, error) {
	bucket := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
	switch bucket {
	case "tickets":
		return &ticket.Ticket{}, nil
	case "accounts":
		return &ledger.Account{}, nil
	case "payouts":
		return &ledger.Payout{}, nil
	default:
		return nil, errors.Wrapf(errors.ErrNotFound, "no model for %q", path)
	}
}
