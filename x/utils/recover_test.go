package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/remittest"
	"github.com/iov-one/remit/remittest/assert"
	"github.com/iov-one/remit/store"
	"github.com/tendermint/tendermint/libs/log"
)

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	ctx := remit.WithLogger(context.Background(), log.NewTMLogger(&logs))
	db := store.MemStore()
	tx := &remittest.Tx{Msg: &remittest.Msg{RoutePath: "ticket/release"}}

	h := &remittest.Handler{Panic: "boom"}
	assert.Panics(t, func() { _, _ = h.Deliver(ctx, db, tx) })

	r := NewRecovery()
	_, err := r.Check(ctx, db, tx, h)
	assert.IsErr(t, errors.ErrPanic, err)
	_, err = r.Deliver(ctx, db, tx, h)
	assert.IsErr(t, errors.ErrPanic, err)

	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("panic value missing from %q", err)
	}
	if got := strings.Count(logs.String(), "transaction panic"); got != 2 {
		t.Fatalf("want 2 panic log entries, got %d: %s", got, logs.String())
	}
	if !strings.Contains(logs.String(), "path=ticket/release") {
		t.Fatalf("path missing from logs: %s", logs.String())
	}

	// Nothing is logged when the handler succeeds.
	logs.Reset()
	_, err = r.Deliver(ctx, db, tx, &remittest.Handler{})
	assert.Nil(t, err)
	assert.Equal(t, "", logs.String())
}
