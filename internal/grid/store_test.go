package grid

import "testing"

func TestStore_SparseInvariant(t *testing.T) {
	s := NewStore()
	s.MarkChecked(5)
	s.MarkChecked(9)
	s.MarkUnchecked(5)
	s.MarkUnchecked(5) // repeated uncheck is a no-op, not an error

	if s.IsChecked(5) {
		t.Fatalf("index 5 should be unchecked after net uncheck")
	}
	if !s.IsChecked(9) {
		t.Fatalf("index 9 should remain checked")
	}
	if s.Len() != 1 {
		t.Fatalf("store holds %d entries, want 1 (no entry may remain for an unchecked index)", s.Len())
	}
}

func TestStore_OutOfDomainIgnored(t *testing.T) {
	s := NewStore()
	s.MarkChecked(-1)
	s.MarkChecked(Domain)
	if s.Len() != 0 {
		t.Fatalf("out-of-domain marks must be ignored, got %d entries", s.Len())
	}
}

func TestMergeRange_Idempotent(t *testing.T) {
	s := NewStore()
	states := map[int]bool{5: true, 10: true}
	s.MergeRange(0, 1000, states)
	s.MergeRange(0, 1000, states)

	if !s.IsChecked(5) || !s.IsChecked(10) {
		t.Fatalf("merged indices should be checked")
	}
	if s.Len() != 2 {
		t.Fatalf("double merge changed the store: %d entries, want 2", s.Len())
	}
}

func TestMergeRange_AuthoritativeOnlyInsideRange(t *testing.T) {
	s := NewStore()
	s.MarkChecked(2000)
	// 2000 is listed but outside [0,1000): it must be untouched
	s.MergeRange(0, 1000, map[int]bool{7: true, 2000: false})
	if !s.IsChecked(7) {
		t.Fatalf("index 7 should be checked after merge")
	}
	if !s.IsChecked(2000) {
		t.Fatalf("index 2000 is outside the merge range and must be untouched")
	}
}

func TestMergeRange_ExplicitZeroDeletes(t *testing.T) {
	s := NewStore()
	s.MarkChecked(42)
	s.MergeRange(0, 100, map[int]bool{42: false})
	if s.IsChecked(42) {
		t.Fatalf("explicit 0 bit should delete the entry")
	}
	if s.Len() != 0 {
		t.Fatalf("store should be empty, has %d entries", s.Len())
	}
}

func TestMergeRange_AbsentIndicesKeepKnownState(t *testing.T) {
	s := NewStore()
	s.MarkChecked(300)
	// the answer for [0,1000) does not mention 300: previously known state wins
	s.MergeRange(0, 1000, map[int]bool{7: true})
	if !s.IsChecked(300) {
		t.Fatalf("absent index must keep its previously known state")
	}
}

func TestToggleThenBroadcastEcho(t *testing.T) {
	// a local check followed by the authority's echo of the same mutation
	// must not double anything
	s := NewStore()
	s.MarkChecked(42) // optimistic local toggle
	s.MarkChecked(42) // broadcast echo, applied through the same path
	if !s.IsChecked(42) {
		t.Fatalf("index 42 should be checked")
	}
	if s.Len() != 1 {
		t.Fatalf("echo doubled the entry count: %d", s.Len())
	}
}
