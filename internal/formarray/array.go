// Package formarray implements the ordered, reorderable sub-record lists
// edited inside product and page forms.
package formarray

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrIndex     = errors.New("formarray: index out of range")
	ErrUnknownID = errors.New("formarray: unknown item id")
	ErrCapacity  = errors.New("formarray: capacity reached")
)

// Item identifies an element so drag and drop can address it by id.
type Item interface {
	ItemID() string
}

// orderable is satisfied by *T when T carries a sort order.
type orderable[T any] interface {
	*T
	SetSortOrder(int)
}

// Array is an ordered collection whose sort orders are always 0..n-1.
type Array[T Item, PT orderable[T]] struct {
	items []T
	max   int
}

type Option func(*options)

type options struct {
	max int
}

// WithMax caps the number of items Append accepts. Zero means unbounded.
func WithMax(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.max = n
		}
	}
}

// New copies items into an Array ordered by sortOrder, ties keeping input order.
func New[T Item, PT orderable[T]](items []T, sortOrder func(T) int, opts ...Option) *Array[T, PT] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	copied := append([]T(nil), items...)
	if sortOrder != nil {
		sort.SliceStable(copied, func(i, j int) bool { return sortOrder(copied[i]) < sortOrder(copied[j]) })
	}
	a := &Array[T, PT]{items: copied, max: o.max}
	a.renumber()
	return a
}

func (a *Array[T, PT]) Len() int { return len(a.items) }

// Items returns a copy of the current items.
func (a *Array[T, PT]) Items() []T {
	return append([]T(nil), a.items...)
}

// Full reports whether Append would be rejected.
func (a *Array[T, PT]) Full() bool {
	return a.max > 0 && len(a.items) >= a.max
}

func (a *Array[T, PT]) Append(item T) error {
	if a.Full() {
		return fmt.Errorf("%w: at most %d items", ErrCapacity, a.max)
	}
	a.items = append(a.items, item)
	a.renumber()
	return nil
}

func (a *Array[T, PT]) Remove(index int) error {
	if err := a.check(index); err != nil {
		return err
	}
	a.items = append(a.items[:index], a.items[index+1:]...)
	a.renumber()
	return nil
}

// Update applies patch to the item at index. Sort orders are reassigned
// afterwards, so a patch cannot move an item.
func (a *Array[T, PT]) Update(index int, patch func(PT)) error {
	if err := a.check(index); err != nil {
		return err
	}
	patch(PT(&a.items[index]))
	a.renumber()
	return nil
}

// Move relocates the item at from to position to, shifting the items between.
func (a *Array[T, PT]) Move(from, to int) error {
	if err := a.check(from); err != nil {
		return err
	}
	if err := a.check(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	moved := a.items[from]
	if from < to {
		copy(a.items[from:to], a.items[from+1:to+1])
	} else {
		copy(a.items[to+1:from+1], a.items[to:from])
	}
	a.items[to] = moved
	a.renumber()
	return nil
}

// MoveByID handles a drop event: the dragged item takes the position of the
// item it was dropped over.
func (a *Array[T, PT]) MoveByID(activeID, overID string) error {
	if activeID == overID {
		return nil
	}
	from, to := a.IndexOf(activeID), a.IndexOf(overID)
	if from < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownID, activeID)
	}
	if to < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownID, overID)
	}
	return a.Move(from, to)
}

// IndexOf returns the position of the item with id, or -1.
func (a *Array[T, PT]) IndexOf(id string) int {
	for i, item := range a.items {
		if item.ItemID() == id {
			return i
		}
	}
	return -1
}

func (a *Array[T, PT]) check(index int) error {
	if index < 0 || index >= len(a.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndex, index, len(a.items))
	}
	return nil
}

func (a *Array[T, PT]) renumber() {
	for i := range a.items {
		PT(&a.items[i]).SetSortOrder(i)
	}
}
