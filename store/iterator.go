package store

import "bytes"

// mergeIterator combines a snapshot of cached items with the iterator of the
// backing store. Cached items win over the backing store values with the
// same key, and deleted items hide them.
type mergeIterator struct {
	items     []item
	parent    Iterator
	ascending bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []item, parent Iterator, ascending bool) *mergeIterator {
	it := &mergeIterator{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
	it.skipDeleted()
	return it
}

// source marks where the current item comes from
type source int32

const (
	none source = iota
	us
	parent
	both
)

func (m *mergeIterator) current() source {
	hasUs := len(m.items) > 0
	hasParent := m.parent != nil && m.parent.Valid()
	switch {
	case !hasUs && !hasParent:
		return none
	case !hasParent:
		return us
	case !hasUs:
		return parent
	}
	cmp := bytes.Compare(m.items[0].key, m.parent.Key())
	if !m.ascending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return us
	case cmp > 0:
		return parent
	default:
		return both
	}
}

// skipDeleted advances over all deleted cached items, together with the
// backing store values they hide.
func (m *mergeIterator) skipDeleted() {
	for {
		src := m.current()
		if src != us && src != both {
			return
		}
		if !m.items[0].deleted {
			return
		}
		m.items = m.items[1:]
		if src == both {
			m.parent.Next()
		}
	}
}

// Valid returns true iff it can be read
func (m *mergeIterator) Valid() bool {
	return m.current() != none
}

// Next moves to the next key. Panics if not valid.
func (m *mergeIterator) Next() {
	switch m.current() {
	case us:
		m.items = m.items[1:]
	case parent:
		m.parent.Next()
	case both:
		m.items = m.items[1:]
		m.parent.Next()
	default:
		panic("advanced past the end")
	}
	m.skipDeleted()
}

// Key returns the key of the cursor.
func (m *mergeIterator) Key() []byte {
	switch m.current() {
	case us, both:
		return m.items[0].key
	case parent:
		return m.parent.Key()
	default:
		panic("advanced past the end")
	}
}

// Value returns the value of the cursor.
func (m *mergeIterator) Value() []byte {
	switch m.current() {
	case us, both:
		return m.items[0].value
	case parent:
		return m.parent.Value()
	default:
		panic("advanced past the end")
	}
}

// Release releases the Iterator.
func (m *mergeIterator) Release() {
	m.items = nil
	if m.parent != nil {
		m.parent.Release()
	}
}
