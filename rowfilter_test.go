package bsets

import "testing"

func TestNewRowFilter_EmptyReturnsNil(t *testing.T) {
	if f := NewRowFilter(nil); f != nil {
		t.Errorf("NewRowFilter(nil) = %v, want nil", f)
	}
	if f := NewRowFilter([]int32{}); f != nil {
		t.Errorf("NewRowFilter([]) = %v, want nil", f)
	}
}

func TestRowFilter_ShouldSkip(t *testing.T) {
	f := NewRowFilter([]int32{1, 3, 5})
	defer f.Release()

	cases := map[int32]bool{0: false, 1: true, 2: false, 3: true, 4: false, 5: true}
	for row, want := range cases {
		if got := f.ShouldSkip(row); got != want {
			t.Errorf("ShouldSkip(%d) = %v, want %v", row, got, want)
		}
	}
}

func TestRowFilter_NilFilterSkipsNothing(t *testing.T) {
	var f *RowFilter
	for _, row := range []int32{0, 1, 100} {
		if f.ShouldSkip(row) {
			t.Errorf("nil filter ShouldSkip(%d) = true, want false", row)
		}
	}
}

func TestRowFilter_ReuseAfterRelease(t *testing.T) {
	f1 := NewRowFilter([]int32{2})
	f1.Release()

	// A freshly created filter must not see stale entries from a
	// previously released, pooled RowFilter.
	f2 := NewRowFilter([]int32{7})
	defer f2.Release()

	if f2.ShouldSkip(2) {
		t.Error("reused filter retained a stale entry from before Release")
	}
	if !f2.ShouldSkip(7) {
		t.Error("reused filter missing its own entry")
	}
}
