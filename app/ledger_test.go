package app

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"testing"
	"time"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/remittest"
	"github.com/iov-one/remit/store/iavl"
	"github.com/iov-one/remit/x/commission"
	"github.com/iov-one/remit/x/commitment"
	"github.com/iov-one/remit/x/ledger"
	"github.com/iov-one/remit/x/ticket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var genesisTime = time.Date(2019, time.March, 14, 10, 0, 0, 0, time.UTC)

type parties struct {
	owner     remit.Address
	collector remit.Address
	depositor remit.Address
	exchange  remit.Address
	recipient remit.Address
}

func newParties() parties {
	return parties{
		owner:     remittest.SequenceAddr("owner"),
		collector: remittest.SequenceAddr("collector"),
		depositor: remittest.SequenceAddr("depositor"),
		exchange:  remittest.SequenceAddr("exchange"),
		recipient: remittest.SequenceAddr("recipient"),
	}
}

func genesis(t *testing.T, p parties, policy commission.Configuration) *Genesis {
	t.Helper()
	rawPolicy, err := json.Marshal(policy)
	require.NoError(t, err)
	raw := fmt.Sprintf(`{
		"chain_id": "remit-test",
		"app_state": {
			"conf": {
				"ledger": {"owner": %q, "commission_beneficiary": %q},
				"commission": %s,
				"ticket": {"scheme": "keccak256", "max_deadline_offset": 604800}
			},
			"ledger": [
				{"address": %q, "amount": 5000}
			]
		}
	}`, p.owner, p.collector, rawPolicy, p.depositor)
	var gen Genesis
	require.NoError(t, json.Unmarshal([]byte(raw), &gen))
	return &gen
}

func newTestLedger(t *testing.T, payer ledger.Payer, policy commission.Configuration) (*Ledger, *ManualClock, parties) {
	t.Helper()
	p := newParties()
	clock := NewManualClock(genesisTime)
	l, err := NewLedger(iavl.MockCommitStore(), payer, clock, nil)
	require.NoError(t, err)
	require.NoError(t, l.InitChain(genesis(t, p, policy)))
	return l, clock, p
}

func requireBalanced(t *testing.T, l *Ledger) *ledger.Audit {
	t.Helper()
	a, err := l.Audit()
	require.NoError(t, err)
	require.Equal(t, a.Expected(), a.Held())
	return a
}

func balance(t *testing.T, l *Ledger, acct remit.Address) uint64 {
	t.Helper()
	b, err := l.AvailableBalance(acct)
	require.NoError(t, err)
	return b
}

func digests(secret1, secret2 string) ([]byte, []byte) {
	return commitment.Keccak256.Commit([]byte(secret1)), commitment.Keccak256.Commit([]byte(secret2))
}

func TestLedgerReleaseScenario(t *testing.T) {
	payer := &ledger.RecordingPayer{}
	l, clock, p := newTestLedger(t, payer, commission.Configuration{BasisPoints: 300})
	assert.Equal(t, "remit-test", l.ChainID())

	d1, d2 := digests("first", "second")
	id, err := l.CreateTicket(p.depositor, p.exchange, d1, d2, "")
	require.NoError(t, err)
	require.NoError(t, l.FundTicket(p.depositor, id, 2000, 1000))
	assert.EqualValues(t, 3000, balance(t, l, p.depositor))

	amount, deadline, state, err := l.TicketInfo(id)
	require.NoError(t, err)
	assert.EqualValues(t, 2000, amount)
	assert.Equal(t, remit.AsUnixTime(genesisTime.Add(1000*time.Second)), deadline)
	assert.Equal(t, ticket.Funded, state)

	// the deadline itself is still valid
	clock.Advance(1000 * time.Second)
	require.NoError(t, l.ReleaseTicket(p.exchange, id, []byte("first"), []byte("second")))

	assert.EqualValues(t, 1940, balance(t, l, p.exchange))
	pool, err := l.CommissionPoolBalance()
	require.NoError(t, err)
	assert.EqualValues(t, 60, pool)

	amount, _, state, err = l.TicketInfo(id)
	require.NoError(t, err)
	assert.EqualValues(t, 0, amount)
	assert.Equal(t, ticket.Released, state)

	// no double release
	err = l.ReleaseTicket(p.exchange, id, []byte("first"), []byte("second"))
	assert.True(t, ticket.ErrAlreadyReleased.Is(err), "unexpected error: %+v", err)
	assert.EqualValues(t, 1940, balance(t, l, p.exchange))

	// second hop, the exchange keeps what it does not forward
	require.NoError(t, l.RelayForward(p.exchange, p.recipient, 1900))
	assert.EqualValues(t, 40, balance(t, l, p.exchange))
	assert.EqualValues(t, 1900, payer.Total(p.recipient))

	err = l.WithdrawCommission(p.exchange, 60)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)
	err = l.WithdrawCommission(p.collector, 61)
	assert.True(t, errors.ErrInsufficientFunds.Is(err), "unexpected error: %+v", err)
	require.NoError(t, l.WithdrawCommission(p.collector, 60))
	assert.EqualValues(t, 60, payer.Total(p.collector))

	a := requireBalanced(t, l)
	assert.EqualValues(t, 5000, a.Deposited)
	assert.EqualValues(t, 1900, a.Forwarded)
	assert.EqualValues(t, 60, a.CommissionWithdrawn)
}

func TestLedgerCancelScenario(t *testing.T) {
	l, _, p := newTestLedger(t, nil, commission.Configuration{Fixed: 10})

	d1, d2 := digests("a", "b")
	id, err := l.FundNewTicket(p.depositor, p.exchange, d1, d2, "cancel me", 500, 3600)
	require.NoError(t, err)
	assert.EqualValues(t, 4500, balance(t, l, p.depositor))

	err = l.CancelTicket(p.exchange, id)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)

	require.NoError(t, l.CancelTicket(p.depositor, id))
	assert.EqualValues(t, 5000, balance(t, l, p.depositor))

	amount, _, state, err := l.TicketInfo(id)
	require.NoError(t, err)
	assert.EqualValues(t, 0, amount)
	assert.Equal(t, ticket.Cancelled, state)

	err = l.ReleaseTicket(p.exchange, id, []byte("a"), []byte("b"))
	assert.True(t, ticket.ErrTicketNotFound.Is(err), "unexpected error: %+v", err)
	requireBalanced(t, l)
}

func TestLedgerDuplicateTicket(t *testing.T) {
	l, _, p := newTestLedger(t, nil, commission.Configuration{})

	d1, d2 := digests("a", "b")
	_, err := l.FundNewTicket(p.depositor, p.exchange, d1, d2, "", 100, 3600)
	require.NoError(t, err)

	_, err = l.CreateTicket(p.depositor, p.exchange, d1, d2, "")
	assert.True(t, errors.ErrDuplicate.Is(err), "unexpected error: %+v", err)
	_, err = l.FundNewTicket(p.depositor, p.exchange, d1, d2, "", 100, 3600)
	assert.True(t, errors.ErrDuplicate.Is(err), "unexpected error: %+v", err)

	// the failed funding must not reserve anything
	assert.EqualValues(t, 4900, balance(t, l, p.depositor))
	requireBalanced(t, l)
}

func TestLedgerExpiredAndInvalidProof(t *testing.T) {
	l, clock, p := newTestLedger(t, nil, commission.Configuration{BasisPoints: 300})

	d1, d2 := digests("a", "b")
	id, err := l.FundNewTicket(p.depositor, p.exchange, d1, d2, "", 1000, 60)
	require.NoError(t, err)

	err = l.ReleaseTicket(p.exchange, id, []byte("a"), []byte("wrong"))
	assert.True(t, ticket.ErrInvalidProof.Is(err), "unexpected error: %+v", err)
	err = l.ReleaseTicket(p.exchange, id, []byte("wrong"), []byte("b"))
	assert.True(t, ticket.ErrInvalidProof.Is(err), "unexpected error: %+v", err)

	clock.Advance(61 * time.Second)
	err = l.ReleaseTicket(p.exchange, id, []byte("a"), []byte("b"))
	assert.True(t, errors.ErrExpired.Is(err), "unexpected error: %+v", err)

	// only the owner can move the deadline
	err = l.ExtendDeadline(p.depositor, id, 600)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)
	require.NoError(t, l.ExtendDeadline(p.owner, id, 600))

	require.NoError(t, l.ReleaseTicket(p.exchange, id, []byte("a"), []byte("b")))
	assert.EqualValues(t, 970, balance(t, l, p.exchange))
	requireBalanced(t, l)
}

func TestLedgerWithdraw(t *testing.T) {
	payer := &ledger.RecordingPayer{}
	l, _, p := newTestLedger(t, payer, commission.Configuration{})

	err := l.Withdraw(p.depositor, 0)
	assert.True(t, errors.ErrAmount.Is(err), "unexpected error: %+v", err)
	err = l.Withdraw(p.depositor, 5001)
	assert.True(t, errors.ErrInsufficientFunds.Is(err), "unexpected error: %+v", err)
	err = l.Withdraw(nil, 1)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)

	require.NoError(t, l.Withdraw(p.depositor, 1000))
	assert.EqualValues(t, 4000, balance(t, l, p.depositor))
	assert.Equal(t, []ledger.Payment{{To: p.depositor, Amount: 1000}}, payer.Payments())

	require.NoError(t, l.Deposit(p.exchange, 250))
	assert.EqualValues(t, 250, balance(t, l, p.exchange))
	requireBalanced(t, l)
}

func TestLedgerFailedPayoutIsRolledBack(t *testing.T) {
	payer := &ledger.RecordingPayer{Err: errors.Wrap(errors.ErrState, "host refused")}
	l, _, p := newTestLedger(t, payer, commission.Configuration{})

	err := l.Withdraw(p.depositor, 1000)
	assert.True(t, errors.ErrState.Is(err), "unexpected error: %+v", err)
	assert.EqualValues(t, 5000, balance(t, l, p.depositor))

	a := requireBalanced(t, l)
	assert.EqualValues(t, 0, a.Withdrawn)
}

func TestLedgerExtraAuthenticator(t *testing.T) {
	p := newParties()
	payer := &ledger.RecordingPayer{}
	operator := &remittest.Auth{Caller: p.depositor}
	l, err := NewLedger(iavl.MockCommitStore(), payer, NewManualClock(genesisTime), nil, operator)
	require.NoError(t, err)
	require.NoError(t, l.InitChain(genesis(t, p, commission.Configuration{})))

	// Without a caller in the transaction the extra authenticator decides.
	require.NoError(t, l.Withdraw(nil, 100))
	assert.EqualValues(t, 4900, balance(t, l, p.depositor))
	assert.Equal(t, []ledger.Payment{{To: p.depositor, Amount: 100}}, payer.Payments())

	// The caller provided by the host always comes first.
	err = l.Withdraw(p.exchange, 100)
	assert.True(t, errors.ErrInsufficientFunds.Is(err), "unexpected error: %+v", err)
	assert.EqualValues(t, 4900, balance(t, l, p.depositor))
	requireBalanced(t, l)
}

type panicPayer struct{}

func (panicPayer) Pay(remit.Context, remit.Address, uint64) error {
	panic("payment system is down")
}

func TestLedgerPanicIsRolledBack(t *testing.T) {
	l, _, p := newTestLedger(t, panicPayer{}, commission.Configuration{})

	err := l.Withdraw(p.depositor, 1000)
	assert.True(t, errors.ErrPanic.Is(err), "unexpected error: %+v", err)
	assert.EqualValues(t, 5000, balance(t, l, p.depositor))
	requireBalanced(t, l)
}

func TestLedgerCheckDoesNotChangeState(t *testing.T) {
	l, _, p := newTestLedger(t, nil, commission.Configuration{})
	_, err := l.Commit()
	require.NoError(t, err)

	require.NoError(t, l.Check(p.depositor, &ledger.WithdrawMsg{Amount: 100}))
	err = l.Check(p.depositor, &ledger.WithdrawMsg{Amount: 100000})
	assert.True(t, errors.ErrInsufficientFunds.Is(err), "unexpected error: %+v", err)

	d1, d2 := digests("a", "b")
	require.NoError(t, l.Check(p.depositor, &ticket.FundNewMsg{
		Beneficiary:    p.exchange,
		Digest1:        d1,
		Digest2:        d2,
		Amount:         100,
		DeadlineOffset: 60,
	}))
	assert.EqualValues(t, 5000, balance(t, l, p.depositor))
	_, err = l.Ticket(commitment.LockID(p.exchange, d1, d2))
	assert.True(t, ticket.ErrTicketNotFound.Is(err), "unexpected error: %+v", err)
}

func TestLedgerCommitAndQuery(t *testing.T) {
	db, cleanup := remittest.CommitKVStore(t)
	defer cleanup()

	p := newParties()
	l, err := NewLedger(db, nil, NewManualClock(genesisTime), nil)
	require.NoError(t, err)
	require.NoError(t, l.InitChain(genesis(t, p, commission.Configuration{})))

	d1, d2 := digests("a", "b")
	id, err := l.FundNewTicket(p.depositor, p.exchange, d1, d2, "", 100, 60)
	require.NoError(t, err)

	res, err := l.Query("/tickets", id)
	require.NoError(t, err)
	assert.Empty(t, res)

	cid, err := l.Commit()
	require.NoError(t, err)
	assert.EqualValues(t, 1, cid.Version)
	assert.NotEmpty(t, cid.Hash)

	res, err = l.Query("/tickets", id)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = l.Query("/tickets/depositor", p.depositor)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = l.Query("/accounts?prefix", nil)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	digest, err := l.CommitSecret([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, d1, digest)
}

func TestLedgerGenesisOnce(t *testing.T) {
	p := newParties()
	l, err := NewLedger(iavl.MockCommitStore(), nil, NewManualClock(genesisTime), nil)
	require.NoError(t, err)

	gen := genesis(t, p, commission.Configuration{Fixed: 1, BasisPoints: 1})
	err = l.InitChain(gen)
	assert.True(t, errors.ErrState.Is(err), "unexpected error: %+v", err)
	assert.Equal(t, "", l.ChainID())

	require.NoError(t, l.InitChain(genesis(t, p, commission.Configuration{})))
	err = l.InitChain(genesis(t, p, commission.Configuration{}))
	assert.True(t, errors.ErrImmutable.Is(err), "unexpected error: %+v", err)
}

func TestInitGenesis(t *testing.T) {
	p := newParties()
	gen := genesis(t, p, commission.Configuration{BasisPoints: 250})

	l, err := NewLedger(iavl.MockCommitStore(), nil, nil, nil)
	require.NoError(t, err)
	db := l.app.DeliverStore()
	require.NoError(t, InitGenesis(db, gen.AppState))

	policy, err := commission.LoadPolicy(db)
	require.NoError(t, err)
	assert.Equal(t, commission.Percentage(250), policy)
	assert.EqualValues(t, 5000, balance(t, l, p.depositor))
}

func TestLedgerPersistence(t *testing.T) {
	dir, err := ioutil.TempDir("", "remit-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	p := newParties()
	db := iavl.NewCommitStore(dir, "remit")
	l, err := NewLedger(db, nil, NewManualClock(genesisTime), nil)
	require.NoError(t, err)
	require.NoError(t, l.InitChain(genesis(t, p, commission.Configuration{})))
	require.NoError(t, l.Deposit(p.exchange, 70))
	_, err = l.Commit()
	require.NoError(t, err)
	// not committed, lost on close
	require.NoError(t, l.Deposit(p.exchange, 30))
	db.Close()

	db = iavl.NewCommitStore(dir, "remit")
	defer db.Close()
	l, err = NewLedger(db, nil, NewManualClock(genesisTime), nil)
	require.NoError(t, err)
	assert.Equal(t, "remit-test", l.ChainID())
	assert.EqualValues(t, 70, balance(t, l, p.exchange))
	assert.EqualValues(t, 5000, balance(t, l, p.depositor))
	requireBalanced(t, l)
}
