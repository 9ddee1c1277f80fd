package app

import (
	"context"
	"sync"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/x"
	"github.com/iov-one/remit/x/commission"
	"github.com/iov-one/remit/x/ledger"
	"github.com/iov-one/remit/x/ticket"
	"github.com/iov-one/remit/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is reported by the application logs.
const Name = "remit"

// Ledger is the in-process API of the escrow ledger. Every mutating call is
// one transaction: calls are serialized and a failed call leaves the state
// unchanged. Changes are persisted by Commit.
type Ledger struct {
	mu      sync.Mutex
	app     BaseApp
	clock   Clock
	ledger  *ledger.BaseController
	tickets *ticket.Controller
}

// NewLedger loads the ledger from given store. Payouts are made with the
// payer and the current time is read from the clock.
//
// The caller of a message is the one provided by the host with the
// transaction. Extra authenticators are consulted, in order, when the
// transaction carries no caller.
func NewLedger(store remit.CommitKVStore, payer ledger.Payer, clock Clock, logger log.Logger, extra ...x.Authenticator) (*Ledger, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	lc := ledger.NewController(payer)
	tc := ticket.NewController(lc)

	auth := x.ChainAuth(append([]x.Authenticator{x.CallerAuth{}}, extra...)...)
	r := NewRouter()
	ledger.RegisterRoutes(r, auth, lc)
	ticket.RegisterRoutes(r, auth, tc)

	qr := remit.NewQueryRouter()
	qr.RegisterAll(ledger.RegisterQuery, ticket.RegisterQuery)

	sa, err := NewStoreApp(Name, store, qr, context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "store")
	}
	sa = sa.WithLogger(logger).WithInit(Initializers(lc))

	handler := ChainDecorators(
		NewCallerDecorator(),
		utils.NewLogging(),
		utils.NewRecovery(),
		ledger.NewPayoutDecorator(payer),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(r)

	return &Ledger{
		app:     NewBaseApp(sa, handler),
		clock:   clock,
		ledger:  lc,
		tickets: tc,
	}, nil
}

// Initializers returns the initializer of all extensions, in the order
// the genesis must be loaded.
func Initializers(ctrl ledger.Controller) remit.Initializer {
	return ChainInitializers(
		commission.Initializer{},
		&ledger.Initializer{Ctrl: ctrl},
		ticket.Initializer{},
	)
}

// InitGenesis loads the state of all extensions from the genesis options.
func InitGenesis(db remit.KVStore, opts remit.Options) error {
	return Initializers(ledger.NewController(ledger.NopPayer{})).FromGenesis(opts, db)
}

// InitChain loads the genesis. It fails if the ledger was already
// initialized.
func (l *Ledger) InitChain(gen *Genesis) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.app.InitChain(gen)
}

// ChainID returns the chain id set at genesis.
func (l *Ledger) ChainID() string {
	return l.app.GetChainID()
}

// Submit delivers a message on behalf of the caller.
func (l *Ledger) Submit(caller remit.Address, msg remit.Msg) (*remit.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.app.Deliver(l.clock.Now(), &Tx{Msg: msg, Caller: caller})
}

// Check validates a message on behalf of the caller against the committed
// state. The state is never changed.
func (l *Ledger) Check(caller remit.Address, msg remit.Msg) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.app.Check(l.clock.Now(), &Tx{Msg: msg, Caller: caller})
	return err
}

func (l *Ledger) submit(caller remit.Address, msg remit.Msg) error {
	_, err := l.Submit(caller, msg)
	return err
}

// Deposit credits the caller with amount.
func (l *Ledger) Deposit(caller remit.Address, amount uint64) error {
	return l.submit(caller, &ledger.DepositMsg{Amount: amount})
}

// Withdraw pays amount of the caller's available funds to the caller.
func (l *Ledger) Withdraw(caller remit.Address, amount uint64) error {
	return l.submit(caller, &ledger.WithdrawMsg{Amount: amount})
}

// AvailableBalance returns the funds of the account that are not reserved.
func (l *Ledger) AvailableBalance(acct remit.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ledger.Balance(l.app.DeliverStore(), acct)
}

// Account returns the balances of the account.
func (l *Ledger) Account(acct remit.Address) (*ledger.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ledger.Account(l.app.DeliverStore(), acct)
}

// CreateTicket opens a ticket for the beneficiary and returns its id.
func (l *Ledger) CreateTicket(caller, beneficiary remit.Address, digest1, digest2 []byte, memo string) ([]byte, error) {
	res, err := l.Submit(caller, &ticket.CreateMsg{
		Beneficiary: beneficiary,
		Digest1:     digest1,
		Digest2:     digest2,
		Memo:        memo,
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// FundTicket locks amount of the caller's funds in an open ticket, for
// offset seconds.
func (l *Ledger) FundTicket(caller remit.Address, id []byte, amount uint64, offset int64) error {
	return l.submit(caller, &ticket.FundMsg{
		TicketID:       id,
		Amount:         amount,
		DeadlineOffset: offset,
	})
}

// FundNewTicket creates and funds a ticket in one call.
func (l *Ledger) FundNewTicket(caller, beneficiary remit.Address, digest1, digest2 []byte, memo string, amount uint64, offset int64) ([]byte, error) {
	res, err := l.Submit(caller, &ticket.FundNewMsg{
		Beneficiary:    beneficiary,
		Digest1:        digest1,
		Digest2:        digest2,
		Memo:           memo,
		Amount:         amount,
		DeadlineOffset: offset,
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// CancelTicket returns the funds of a ticket to the depositor.
func (l *Ledger) CancelTicket(caller remit.Address, id []byte) error {
	return l.submit(caller, &ticket.CancelMsg{TicketID: id})
}

// ReleaseTicket pays the ticket to its beneficiary, minus the commission.
func (l *Ledger) ReleaseTicket(caller remit.Address, id []byte, secret1, secret2 []byte) error {
	return l.submit(caller, &ticket.ReleaseMsg{
		TicketID: id,
		Secret1:  secret1,
		Secret2:  secret2,
	})
}

// TicketInfo returns the locked amount, the deadline and the state of a
// ticket.
func (l *Ledger) TicketInfo(id []byte) (uint64, remit.UnixTime, ticket.State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tickets.Info(l.app.DeliverStore(), id)
}

// Ticket returns the ticket with given id.
func (l *Ledger) Ticket(id []byte) (*ticket.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tickets.Get(l.app.DeliverStore(), id)
}

// CommissionPoolBalance returns the funds collected as commission.
func (l *Ledger) CommissionPoolBalance() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ledger.CommissionPool(l.app.DeliverStore())
}

// WithdrawCommission pays amount from the commission pool to the caller,
// who must be the commission beneficiary.
func (l *Ledger) WithdrawCommission(caller remit.Address, amount uint64) error {
	return l.submit(caller, &ledger.WithdrawCommissionMsg{Amount: amount})
}

// RelayForward pays amount of the caller's available funds to the final
// recipient.
func (l *Ledger) RelayForward(caller, recipient remit.Address, amount uint64) error {
	return l.submit(caller, &ledger.ForwardMsg{Recipient: recipient, Amount: amount})
}

// ExtendDeadline moves the deadline of a funded ticket to offset seconds
// from now. Only the owner can do it.
func (l *Ledger) ExtendDeadline(caller remit.Address, id []byte, offset int64) error {
	return l.submit(caller, &ticket.ExtendDeadlineMsg{
		TicketID:       id,
		DeadlineOffset: offset,
	})
}

// CommitSecret returns the digest of the secret, as computed by the
// configured commitment scheme.
func (l *Ledger) CommitSecret(secret []byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := ticket.LoadScheme(l.app.DeliverStore())
	if err != nil {
		return nil, err
	}
	return s.Commit(secret), nil
}

// Audit verifies that the held funds match the funds that entered and left
// the ledger, and that all reserved funds are locked in funded tickets.
func (l *Ledger) Audit() (*ledger.Audit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tickets.Audit(l.app.DeliverStore())
}

// Query reads the committed state. See StoreApp.Query.
func (l *Ledger) Query(path string, data []byte) ([]remit.Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.app.Query(path, data)
}

// QueryPaths lists the paths accepted by Query.
func (l *Ledger) QueryPaths() []string {
	return l.app.QueryPaths()
}

// Commit persists all changes made since the previous commit.
func (l *Ledger) Commit() (remit.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.app.Commit()
}
