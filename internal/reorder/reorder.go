// Package reorder implements drag-and-drop reordering of ordered
// collections with contiguous 0-based order indices.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Entry is an entity's identity and its advisory sort key.
type Entry struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"order_index"`
}

// Move removes the element identified by movedID and reinserts it at the
// position currently held by targetID. It reports false, returning list
// unchanged, if the ids are equal or either is missing.
func Move[T any](list []T, idOf func(T) string, movedID, targetID string) ([]T, bool) {
	if movedID == targetID {
		return list, false
	}

	from := slices.IndexFunc(list, func(v T) bool { return idOf(v) == movedID })
	to := slices.IndexFunc(list, func(v T) bool { return idOf(v) == targetID })
	if from < 0 || to < 0 {
		return list, false
	}

	out := slices.Clone(list)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, moved)
	return out, true
}

// Reorder moves movedID to targetID's position and reassigns every
// entry's OrderIndex to its position. The input slice is not modified.
func Reorder(list []Entry, movedID, targetID string) []Entry {
	out, ok := Move(list, func(e Entry) string { return e.ID }, movedID, targetID)
	if !ok {
		return list
	}
	return Normalize(out)
}

// Normalize returns a copy of list with OrderIndex set to each position.
func Normalize(list []Entry) []Entry {
	out := make([]Entry, len(list))
	for i, e := range list {
		out[i] = Entry{ID: e.ID, OrderIndex: i}
	}
	return out
}

// Changed returns the entries of after whose index differs from the same
// id in before, in after's order.
func Changed(before, after []Entry) []Entry {
	prev := make(map[string]int, len(before))
	for _, e := range before {
		prev[e.ID] = e.OrderIndex
	}

	var changed []Entry
	for _, e := range after {
		if idx, ok := prev[e.ID]; !ok || idx != e.OrderIndex {
			changed = append(changed, e)
		}
	}
	return changed
}

// Writer persists an entity's order index.
type Writer interface {
	WriteOrder(ctx context.Context, id string, orderIndex int) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, id string, orderIndex int) error

// WriteOrder calls f.
func (f WriterFunc) WriteOrder(ctx context.Context, id string, orderIndex int) error {
	return f(ctx, id, orderIndex)
}

// List is an ordered collection whose moves are written back through
// a Writer. The in-memory order only changes once every write succeeds.
type List struct {
	mu      sync.Mutex
	entries []Entry
	writer  Writer
}

// NewList creates a list from entries as currently stored.
func NewList(entries []Entry, writer Writer) *List {
	return &List{entries: slices.Clone(entries), writer: writer}
}

// Entries returns a copy of the current order.
func (l *List) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Move reorders the list and persists every changed index in the final
// order. If a write fails, entries already written are restored to their
// previous index and the in-memory order is left as it was before the move.
func (l *List) Move(ctx context.Context, movedID, targetID string) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.entries
	after := Reorder(before, movedID, targetID)
	changed := Changed(before, after)
	if len(changed) == 0 {
		return slices.Clone(before), nil
	}

	prev := make(map[string]int, len(before))
	for _, e := range before {
		prev[e.ID] = e.OrderIndex
	}

	for i, e := range changed {
		if err := l.writer.WriteOrder(ctx, e.ID, e.OrderIndex); err != nil {
			err = fmt.Errorf("failed to write order for %s: %w", e.ID, err)
			return slices.Clone(before), errors.Join(err, l.compensate(ctx, changed[:i], prev))
		}
	}

	l.entries = after
	return slices.Clone(after), nil
}

func (l *List) compensate(ctx context.Context, written []Entry, prev map[string]int) error {
	var errs []error
	for _, e := range written {
		if err := l.writer.WriteOrder(ctx, e.ID, prev[e.ID]); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore order for %s: %w", e.ID, err))
		}
	}
	return errors.Join(errs...)
}
