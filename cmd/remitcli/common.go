package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/app"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/orm"
	"github.com/iov-one/remit/store/iavl"
	"github.com/iov-one/remit/x/ledger"
	"github.com/tendermint/tendermint/libs/log"
)

// dbName is the name of the database kept in the home directory.
const dbName = "remit"

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func defaultHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".remit")
	}
	return ".remit"
}

// ledgerFlags are shared by all commands that operate on the ledger state.
type ledgerFlags struct {
	home     *string
	logLevel *string
	now      *string
}

func addLedgerFlags(fl *flag.FlagSet) ledgerFlags {
	return ledgerFlags{
		home:     fl.String("home", env("REMITCLI_HOME", defaultHome()), "Directory the ledger state is kept in."),
		logLevel: fl.String("log-level", env("REMITCLI_LOG_LEVEL", "error"), "Log level, one of debug, info, error or none."),
		now:      fl.String("time", env("REMITCLI_TIME", ""), "Optional RFC3339 time the operation is executed at. Current time is used if not provided."),
	}
}

// session is the ledger opened for the duration of a single command.
type session struct {
	*app.Ledger
	db iavl.CommitStore
}

// open loads the ledger from the home directory. Payouts are written to
// out. The session must be closed.
func (f ledgerFlags) open(out io.Writer) (*session, error) {
	logger, err := newLogger(*f.logLevel)
	if err != nil {
		return nil, err
	}
	clock, err := newClock(*f.now)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(*f.home, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	db := iavl.NewCommitStore(*f.home, dbName)
	l, err := app.NewLedger(db, &outputPayer{out: out}, clock, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &session{Ledger: l, db: db}, nil
}

func (s *session) close() {
	s.db.Close()
}

// commit persists all changes made by the command.
func (s *session) commit() error {
	if _, err := s.Commit(); err != nil {
		return err
	}
	return nil
}

// initialized fails if the ledger was never loaded from a genesis file.
func (s *session) initialized() error {
	if s.ChainID() == "" {
		return errors.Wrap(errors.ErrState, "ledger not initialized, run the init command first")
	}
	return nil
}

// newLogger returns a logger writing to stderr, filtered by the level.
func newLogger(level string) (log.Logger, error) {
	if level == "none" {
		return log.NewNopLogger(), nil
	}
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	return log.NewFilter(logger, opt).With("module", "remitcli"), nil
}

func newClock(now string) (app.Clock, error) {
	if now == "" {
		return app.SystemClock{}, nil
	}
	t, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "time: %s", err)
	}
	return app.NewManualClock(t.UTC()), nil
}

// outputPayer reports every payout made by the ledger. The actual transfer
// is left to the operator.
type outputPayer struct {
	out io.Writer
}

var _ ledger.Payer = (*outputPayer)(nil)

func (p *outputPayer) Pay(ctx remit.Context, to remit.Address, amount uint64) error {
	_, err := fmt.Fprintf(p.out, "pay %d to %s\n", amount, to)
	return err
}

// writeJSON writes an indented JSON representation of the value.
func writeJSON(out io.Writer, v interface{}) error {
	raw, err := orm.Codec().MarshalJSONIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrType, err.Error())
	}
	_, err = fmt.Fprintf(out, "%s\n", raw)
	return err
}

// required returns an error if any of the given flags was not set.
func required(fl *flag.FlagSet, names ...string) error {
	set := make(map[string]bool)
	fl.Visit(func(f *flag.Flag) { set[f.Name] = true })
	var err error
	for _, name := range names {
		if !set[name] {
			err = errors.AppendField(err, name, errors.Wrap(errors.ErrEmpty, "required flag"))
		}
	}
	return err
}
