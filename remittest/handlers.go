package remittest

import remit "github.com/iov-one/remit"

// Handler is a mock implementation of the remit.Handler interface.
//
// Set CheckErr or DeliverErr to force error response. When Write is set,
// the key/value pair is written to the store before returning, so that
// savepoint behaviour can be observed.
type Handler struct {
	checkCall   int
	CheckResult remit.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult remit.DeliverResult
	DeliverErr    error

	// Write if set is written to the store on every call.
	Write *remit.Model
	// Panic if set makes every call panic with this value.
	Panic interface{}
}

var _ remit.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.CheckResult, error) {
	h.checkCall++
	if err := h.sideEffects(db); err != nil {
		return nil, err
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx remit.Context, db remit.KVStore, tx remit.Tx) (*remit.DeliverResult, error) {
	h.deliverCall++
	if err := h.sideEffects(db); err != nil {
		return nil, err
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) sideEffects(db remit.KVStore) error {
	if h.Write != nil {
		if err := db.Set(h.Write.Key, h.Write.Value); err != nil {
			return err
		}
	}
	if h.Panic != nil {
		panic(h.Panic)
	}
	return nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
