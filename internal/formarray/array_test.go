package formarray

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/voltline/site/internal/domain"
)

func specs(ids ...string) []domain.Specification {
	out := make([]domain.Specification, 0, len(ids))
	for i, id := range ids {
		out = append(out, domain.Specification{ID: id, Key: "key-" + id, SortOrder: 10 * i})
	}
	return out
}

func ids(items []domain.Specification) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func orders(items []domain.Specification) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, item.SortOrder)
	}
	return out
}

func bySortOrder(s domain.Specification) int { return s.SortOrder }

func TestNewOrdersAndRenumbers(t *testing.T) {
	input := []domain.Specification{
		{ID: "b", SortOrder: 5},
		{ID: "a", SortOrder: 1},
		{ID: "c", SortOrder: 5},
	}
	arr := New(input, bySortOrder)
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids(arr.Items())); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, orders(arr.Items())); diff != "" {
		t.Fatalf("sort orders not dense (-want +got):\n%s", diff)
	}
}

func TestMovePreservesMultisetAndRelativeOrder(t *testing.T) {
	base := []string{"a", "b", "c", "d", "e"}
	for from := range base {
		for to := range base {
			arr := New(specs(base...), bySortOrder)
			if err := arr.Move(from, to); err != nil {
				t.Fatalf("Move(%d, %d): %v", from, to, err)
			}
			got := ids(arr.Items())

			if got[to] != base[from] {
				t.Fatalf("Move(%d, %d): expected %q at %d, got %v", from, to, base[from], to, got)
			}

			var wantRest, gotRest []string
			for i, id := range base {
				if i != from {
					wantRest = append(wantRest, id)
				}
			}
			for i, id := range got {
				if i != to {
					gotRest = append(gotRest, id)
				}
			}
			if diff := cmp.Diff(wantRest, gotRest); diff != "" {
				t.Fatalf("Move(%d, %d) changed relative order (-want +got):\n%s", from, to, diff)
			}
			if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, orders(arr.Items())); diff != "" {
				t.Fatalf("Move(%d, %d) left sparse sort orders:\n%s", from, to, diff)
			}
		}
	}
}

func TestMoveByID(t *testing.T) {
	arr := New(specs("a", "b", "c", "d"), bySortOrder)
	if err := arr.MoveByID("d", "b"); err != nil {
		t.Fatalf("MoveByID: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "d", "b", "c"}, ids(arr.Items())); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	if err := arr.MoveByID("a", "a"); err != nil {
		t.Fatalf("self drop should be a no-op, got %v", err)
	}
	if err := arr.MoveByID("zzz", "a"); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
}

func TestAppendRemoveUpdate(t *testing.T) {
	arr := New(specs("a", "b"), bySortOrder, WithMax(3))

	if err := arr.Append(domain.Specification{ID: "c", SortOrder: 99}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !arr.Full() {
		t.Fatalf("expected array to be full")
	}
	if err := arr.Append(domain.Specification{ID: "d"}); !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}

	if err := arr.Update(2, func(s *domain.Specification) {
		s.Unit = "kW"
		s.SortOrder = -7
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := arr.Items()[2]; got.Unit != "kW" || got.SortOrder != 2 {
		t.Fatalf("expected patched unit and restored order, got %+v", got)
	}

	if err := arr.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c"}, ids(arr.Items())); diff != "" {
		t.Fatalf("unexpected items after remove:\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, orders(arr.Items())); diff != "" {
		t.Fatalf("unexpected orders after remove:\n%s", diff)
	}

	if err := arr.Remove(5); !errors.Is(err, ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
	if err := arr.Move(0, 9); !errors.Is(err, ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	arr := New(specs("a"), bySortOrder)
	items := arr.Items()
	items[0].ID = "mutated"
	if arr.Items()[0].ID != "a" {
		t.Fatalf("Items must not expose internal storage")
	}
}
