package app

import (
	"time"

	remit "github.com/iov-one/remit"
)

// BaseApp adds Check and Deliver handling to the storage and query
// functionality of StoreApp.
type BaseApp struct {
	*StoreApp
	handler remit.Handler
}

// NewBaseApp constructs a basic application
func NewBaseApp(store *StoreApp, handler remit.Handler) BaseApp {
	return BaseApp{
		StoreApp: store,
		handler:  handler,
	}
}

// Deliver executes the transaction in a block processed at now. Changes are
// kept in the deliver cache until Commit.
func (b BaseApp) Deliver(now time.Time, tx remit.Tx) (*remit.DeliverResult, error) {
	ctx, err := b.BlockContext(now)
	if err != nil {
		return nil, err
	}
	ctx = remit.WithLogInfo(ctx,
		"call", "deliver_tx",
		"path", remit.GetPath(tx))
	return b.handler.Deliver(ctx, b.DeliverStore(), tx)
}

// Check validates the transaction against the check cache.
func (b BaseApp) Check(now time.Time, tx remit.Tx) (*remit.CheckResult, error) {
	ctx, err := b.BlockContext(now)
	if err != nil {
		return nil, err
	}
	ctx = remit.WithLogInfo(ctx,
		"call", "check_tx",
		"path", remit.GetPath(tx))
	return b.handler.Check(ctx, b.CheckStore(), tx)
}
