package app

import (
	"context"
	"testing"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/remittest"
	"github.com/iov-one/remit/remittest/assert"
	"github.com/iov-one/remit/store"
	"github.com/iov-one/remit/x/utils"
)

func TestChain(t *testing.T) {
	c1 := &remittest.Decorator{}
	c2 := &remittest.Decorator{}
	h := &remittest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		utils.NewRecovery(),
		nil,
		c2,
	).WithHandler(h)

	ctx := remit.WithHeight(context.Background(), 4)
	tx := &remittest.Tx{Msg: &remittest.Msg{RoutePath: "test/msg"}}
	db := store.MemStore()

	_, err := stack.Check(ctx, db, tx)
	assert.Nil(t, err)
	_, err = stack.Deliver(ctx, db, tx)
	assert.Nil(t, err)

	assert.Equal(t, 1, c1.CheckCallCount())
	assert.Equal(t, 1, c1.DeliverCallCount())
	assert.Equal(t, 1, c2.CheckCallCount())
	assert.Equal(t, 1, c2.DeliverCallCount())
	assert.Equal(t, 2, h.CallCount())

	// a panic is stopped by the recovery decorator, before reaching c1
	h.Panic = "boom"
	_, err = stack.Deliver(ctx, db, tx)
	if !errors.ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %+v", err)
	}
	assert.Equal(t, 2, c1.DeliverCallCount())
	assert.Equal(t, 2, c2.DeliverCallCount())
	assert.Equal(t, 3, h.CallCount())
}

func TestChainStopsOnDecoratorError(t *testing.T) {
	c1 := &remittest.Decorator{DeliverErr: errors.ErrUnauthorized}
	h := &remittest.Handler{}
	stack := ChainDecorators(c1).WithHandler(h)

	tx := &remittest.Tx{Msg: &remittest.Msg{RoutePath: "test/msg"}}
	_, err := stack.Deliver(context.Background(), store.MemStore(), tx)
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	assert.Equal(t, 0, h.CallCount())
}
