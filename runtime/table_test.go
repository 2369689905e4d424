package runtime

import "testing"

func TestThreadTable(t *testing.T) {
	tbl := newThreadTable()

	a := &Thread{}
	b := &Thread{}
	ha := tbl.Insert(a)
	hb := tbl.Insert(b)
	if ha == 0 || hb == 0 || ha == hb {
		t.Fatalf("handles = %d, %d, want distinct non-zero", ha, hb)
	}
	if got := tbl.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}

	tbl.Remove(ha)
	if got := tbl.Len(); got != 1 {
		t.Fatalf("Len after Remove = %d, want 1", got)
	}
	// Unknown handles are ignored.
	tbl.Remove(ha)
	tbl.Remove(999)
	if got := tbl.Len(); got != 1 {
		t.Fatalf("Len after no-op Removes = %d, want 1", got)
	}

	seen := 0
	tbl.Each(func(th *Thread) {
		if th != b {
			t.Errorf("Each visited %p, want %p", th, b)
		}
		seen++
	})
	if seen != 1 {
		t.Errorf("Each visited %d threads, want 1", seen)
	}

	tbl.Close()
	if got := tbl.Len(); got != 0 {
		t.Errorf("Len after Close = %d, want 0", got)
	}
	if h := tbl.Insert(a); h != 0 {
		t.Errorf("Insert after Close = %d, want 0", h)
	}
}
