package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/orm"
	"github.com/iov-one/remit/remittest"
	"github.com/iov-one/remit/remittest/assert"
	"github.com/iov-one/remit/x/commitment"
	"github.com/iov-one/remit/x/ledger"
	"github.com/iov-one/remit/x/ticket"
)

var (
	owner     = remittest.SequenceAddr("owner")
	collector = remittest.SequenceAddr("collector")
	depositor = remittest.SequenceAddr("depositor")
	exchange  = remittest.SequenceAddr("exchange")
	recipient = remittest.SequenceAddr("recipient")
)

var startTime = time.Date(2019, time.May, 2, 9, 0, 0, 0, time.UTC)

// testHome creates a directory holding a genesis file. The returned
// function removes it.
func testHome(t *testing.T) (string, func()) {
	t.Helper()
	home, err := ioutil.TempDir("", "remitcli")
	if err != nil {
		t.Fatalf("cannot create home directory: %s", err)
	}
	gen := fmt.Sprintf(`{
		"chain_id": "remit-cli-test",
		"app_state": {
			"conf": {
				"ledger": {"owner": %q, "commission_beneficiary": %q},
				"commission": {"fixed": 0, "basis_points": 300},
				"ticket": {"scheme": "sha256", "max_deadline_offset": 86400}
			},
			"ledger": [
				{"address": %q, "amount": 5000}
			]
		}
	}`, owner, collector, depositor)
	if err := ioutil.WriteFile(filepath.Join(home, "genesis.json"), []byte(gen), 0600); err != nil {
		t.Fatalf("cannot write genesis: %s", err)
	}
	return home, func() { os.RemoveAll(home) }
}

// run executes a command against the ledger in home, at given time.
func run(t *testing.T, home string, at time.Time, cmd string, args ...string) (string, error) {
	t.Helper()
	run, ok := commands[cmd]
	if !ok {
		t.Fatalf("unknown command %q", cmd)
	}
	var out bytes.Buffer
	args = append([]string{
		"-home", home,
		"-log-level", "none",
		"-time", at.Format(time.RFC3339),
	}, args...)
	err := run(nil, &out, args)
	return out.String(), err
}

func mustRun(t *testing.T, home string, at time.Time, cmd string, args ...string) string {
	t.Helper()
	out, err := run(t, home, at, cmd, args...)
	if err != nil {
		t.Fatalf("%s: %s", cmd, err)
	}
	return out
}

func initLedger(t *testing.T, home string) {
	t.Helper()
	out := mustRun(t, home, startTime, "init", "-genesis", filepath.Join(home, "genesis.json"))
	assert.Equal(t, "initialized remit-cli-test\n", out)
}

func decode(t *testing.T, raw string, dest interface{}) {
	t.Helper()
	if err := orm.Codec().UnmarshalJSON([]byte(raw), dest); err != nil {
		t.Fatalf("cannot decode %q: %s", raw, err)
	}
}

func TestCmdReleaseHappyPath(t *testing.T) {
	home, cleanup := testHome(t)
	defer cleanup()
	initLedger(t, home)

	id := strings.TrimSpace(mustRun(t, home, startTime, "fund-new-ticket",
		"-from", depositor.String(),
		"-beneficiary", exchange.String(),
		"-secret1", "first",
		"-secret2", "second",
		"-amount", "2000",
		"-offset", "3600",
		"-memo", "rent",
	))
	if _, err := hex.DecodeString(id); err != nil || id == "" {
		t.Fatalf("invalid ticket id %q", id)
	}

	var info ticketView
	decode(t, mustRun(t, home, startTime, "ticket-info", "-id", id), &info)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, "funded", info.State)
	assert.Equal(t, uint64(2000), info.Amount)
	assert.Equal(t, "rent", info.Memo)
	assert.Equal(t, depositor, info.Depositor)
	assert.Equal(t, hex.EncodeToString(commitment.SHA256.Commit([]byte("first"))), info.Digest1)

	out := mustRun(t, home, startTime.Add(10*time.Minute), "release-ticket",
		"-from", exchange.String(),
		"-id", id,
		"-secret1", "first",
		"-secret2", "second",
	)
	assert.Equal(t, fmt.Sprintf("released 1940 to %s, commission 60\n", exchange), out)

	// A ticket is released only once.
	_, err := run(t, home, startTime.Add(11*time.Minute), "release-ticket",
		"-id", id,
		"-secret1", "first",
		"-secret2", "second",
	)
	if !ticket.ErrAlreadyReleased.Is(err) {
		t.Fatalf("want already released error, got %+v", err)
	}

	var acct ledger.Account
	decode(t, mustRun(t, home, startTime, "balance", "-account", exchange.String()), &acct)
	assert.Equal(t, ledger.Account{Available: 1940}, acct)

	out = mustRun(t, home, startTime, "relay-forward",
		"-from", exchange.String(),
		"-recipient", recipient.String(),
		"-amount", "1900",
	)
	assert.Equal(t, fmt.Sprintf("pay 1900 to %s\n", recipient), out)

	assert.Equal(t, "60\n", mustRun(t, home, startTime, "commission"))
	_, err = run(t, home, startTime, "withdraw-commission", "-from", exchange.String(), "-amount", "60")
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized error, got %+v", err)
	}
	out = mustRun(t, home, startTime, "withdraw-commission", "-from", collector.String(), "-amount", "60")
	assert.Equal(t, fmt.Sprintf("pay 60 to %s\n", collector), out)

	var audit auditView
	decode(t, mustRun(t, home, startTime, "audit"), &audit)
	assert.Equal(t, auditView{
		Available:           3000 + 40,
		Deposited:           5000,
		CommissionWithdrawn: 60,
		Forwarded:           1900,
		Held:                3040,
	}, audit)
}

func TestCmdCancelAndExtend(t *testing.T) {
	home, cleanup := testHome(t)
	defer cleanup()
	initLedger(t, home)

	d1 := strings.TrimSpace(mustRun(t, home, startTime, "commit-secret", "-secret", "first"))
	d2 := strings.TrimSpace(mustRun(t, home, startTime, "commit-secret", "-secret", "second", "-scheme", "sha256"))
	assert.Equal(t, hex.EncodeToString(commitment.SHA256.Commit([]byte("first"))), d1)

	id := strings.TrimSpace(mustRun(t, home, startTime, "create-ticket",
		"-from", depositor.String(),
		"-beneficiary", exchange.String(),
		"-digest1", d1,
		"-digest2", d2,
	))
	mustRun(t, home, startTime, "fund-ticket",
		"-from", depositor.String(),
		"-id", id,
		"-amount", "1000",
		"-offset", "60",
	)

	// Only the owner can extend a deadline.
	_, err := run(t, home, startTime, "extend-deadline", "-from", depositor.String(), "-id", id, "-offset", "600")
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized error, got %+v", err)
	}
	mustRun(t, home, startTime, "extend-deadline", "-from", owner.String(), "-id", id, "-offset", "600")

	var info ticketView
	decode(t, mustRun(t, home, startTime, "ticket-info", "-id", id), &info)
	assert.Equal(t, remit.AsUnixTime(startTime.Add(600*time.Second)).String(), info.Deadline)

	_, err = run(t, home, startTime, "cancel-ticket", "-from", exchange.String(), "-id", id)
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized error, got %+v", err)
	}
	mustRun(t, home, startTime, "cancel-ticket", "-from", depositor.String(), "-id", id)

	decode(t, mustRun(t, home, startTime, "ticket-info", "-id", id), &info)
	assert.Equal(t, "cancelled", info.State)

	var acct ledger.Account
	decode(t, mustRun(t, home, startTime, "balance", "-account", depositor.String()), &acct)
	assert.Equal(t, ledger.Account{Available: 5000}, acct)

	out := mustRun(t, home, startTime, "withdraw", "-from", depositor.String(), "-amount", "5000")
	assert.Equal(t, fmt.Sprintf("pay 5000 to %s\n", depositor), out)
	_, err = run(t, home, startTime, "withdraw", "-from", depositor.String(), "-amount", "1")
	if !errors.ErrInsufficientFunds.Is(err) {
		t.Fatalf("want insufficient funds error, got %+v", err)
	}
}

func TestCmdRequiresInit(t *testing.T) {
	home, cleanup := testHome(t)
	defer cleanup()

	_, err := run(t, home, startTime, "deposit", "-from", depositor.String(), "-amount", "10")
	if !errors.ErrState.Is(err) {
		t.Fatalf("want state error, got %+v", err)
	}

	initLedger(t, home)
	_, err = run(t, home, startTime, "init", "-genesis", filepath.Join(home, "genesis.json"))
	if !errors.ErrImmutable.Is(err) {
		t.Fatalf("want immutable error, got %+v", err)
	}

	mustRun(t, home, startTime, "deposit", "-from", depositor.String(), "-amount", "10")
	var acct ledger.Account
	decode(t, mustRun(t, home, startTime, "balance", "-account", depositor.String()), &acct)
	assert.Equal(t, ledger.Account{Available: 5010}, acct)
}

func TestCmdRequiredFlags(t *testing.T) {
	home, cleanup := testHome(t)
	defer cleanup()

	_, err := run(t, home, startTime, "fund-ticket", "-amount", "10")
	assert.FieldError(t, err, "from", errors.ErrEmpty)
	assert.FieldError(t, err, "id", errors.ErrEmpty)
}

func TestCmdVersion(t *testing.T) {
	var out bytes.Buffer
	if err := cmdVersion(nil, &out, nil); err != nil {
		t.Fatalf("version: %s", err)
	}
	assert.Equal(t, remit.Version()+"\n", out.String())
}

func TestCmdQuery(t *testing.T) {
	home, cleanup := testHome(t)
	defer cleanup()
	initLedger(t, home)

	id := strings.TrimSpace(mustRun(t, home, startTime, "fund-new-ticket",
		"-from", depositor.String(),
		"-beneficiary", exchange.String(),
		"-secret1", "first",
		"-secret2", "second",
		"-amount", "700",
		"-offset", "60",
	))

	paths := mustRun(t, home, startTime, "query")
	for _, p := range []string{"/accounts", "/payouts", "/tickets", "/tickets/depositor"} {
		if !strings.Contains(paths, p+"\n") {
			t.Errorf("path %q not listed in\n%s", p, paths)
		}
	}

	out := mustRun(t, home, startTime, "query", "-path", "/tickets/depositor", "-data", hex.EncodeToString(depositor))
	// Keys are printed in hex, the ticket id is the suffix of its key.
	if !strings.Contains(out, id+"\n") {
		t.Fatalf("ticket %s not found in\n%s", id, out)
	}

	out = mustRun(t, home, startTime, "query", "-path", "/accounts", "-prefix")
	if strings.Count(out, `"reserved"`) != 1 {
		t.Fatalf("want one account, got\n%s", out)
	}

	_, err := run(t, home, startTime, "query", "-path", "/unknown")
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found error, got %+v", err)
	}
}
