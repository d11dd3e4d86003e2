package orderbook

import (
	"errors"
	"testing"
)

func TestAddAndRemove(t *testing.T) {
	b := NewOrderBook("ACME")

	if err := b.Add("o1"); err != nil {
		t.Fatalf("add o1: %v", err)
	}
	if err := b.Add("o2"); err != nil {
		t.Fatalf("add o2: %v", err)
	}
	if b.Len() != 2 {
		t.Errorf("expected 2 resident orders, got %d", b.Len())
	}

	if err := b.Remove("o1"); err != nil {
		t.Fatalf("remove o1: %v", err)
	}
	if b.Len() != 1 {
		t.Errorf("expected 1 resident order, got %d", b.Len())
	}
}

func TestAddDuplicate(t *testing.T) {
	b := NewOrderBook("ACME")
	if err := b.Add("o1"); err != nil {
		t.Fatalf("add o1: %v", err)
	}
	if err := b.Add("o1"); !errors.Is(err, ErrDuplicateOrder) {
		t.Errorf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestRemoveMissing(t *testing.T) {
	b := NewOrderBook("ACME")
	if err := b.Remove("nope"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderIDsPreserveArrivalOrder(t *testing.T) {
	b := NewOrderBook("ACME")
	want := []string{"a", "b", "c", "d"}
	for _, id := range want {
		if err := b.Add(id); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if err := b.Remove("b"); err != nil {
		t.Fatalf("remove b: %v", err)
	}

	got := b.OrderIDs()
	wantAfter := []string{"a", "c", "d"}
	if len(got) != len(wantAfter) {
		t.Fatalf("expected %d ids, got %d", len(wantAfter), len(got))
	}
	for i := range wantAfter {
		if got[i] != wantAfter[i] {
			t.Errorf("position %d: expected %s, got %s", i, wantAfter[i], got[i])
		}
	}

	// mutating the copy must not touch the book
	got[0] = "zzz"
	if b.OrderIDs()[0] != "a" {
		t.Error("OrderIDs must return a copy")
	}
}
