package bsets

import (
	"reflect"
	"testing"
)

func TestBuildCSR_Basic(t *testing.T) {
	// Rows: 0 -> {1,2}, 1 -> {0}, 2 -> {} (empty row)
	xco := []int32{0, 0, 1}
	yco := []int32{2, 1, 0}
	csr := buildCSR(3, 3, xco, yco)

	if csr.N != 3 || csr.M != 3 {
		t.Fatalf("N/M = %d/%d, want 3/3", csr.N, csr.M)
	}
	if csr.NNZ() != 3 {
		t.Fatalf("NNZ = %d, want 3", csr.NNZ())
	}
	if got := csr.Row(0); !reflect.DeepEqual(got, []int32{1, 2}) {
		t.Errorf("Row(0) = %v, want [1 2] (sorted ascending)", got)
	}
	if got := csr.Row(1); !reflect.DeepEqual(got, []int32{0}) {
		t.Errorf("Row(1) = %v, want [0]", got)
	}
	if got := csr.Row(2); len(got) != 0 {
		t.Errorf("Row(2) = %v, want empty", got)
	}
}

func TestBuildCSR_DuplicatesCollapse(t *testing.T) {
	xco := []int32{0, 0, 0}
	yco := []int32{1, 1, 2}
	csr := buildCSR(1, 3, xco, yco)

	if csr.NNZ() != 2 {
		t.Fatalf("NNZ = %d, want 2 after dedup", csr.NNZ())
	}
	if got := csr.Row(0); !reflect.DeepEqual(got, []int32{1, 2}) {
		t.Errorf("Row(0) = %v, want [1 2]", got)
	}
}

func TestBuildCSR_Empty(t *testing.T) {
	csr := buildCSR(0, 0, nil, nil)
	if csr.N != 0 || csr.NNZ() != 0 {
		t.Fatalf("empty matrix should have N=0, NNZ=0, got N=%d NNZ=%d", csr.N, csr.NNZ())
	}
}

func TestCSRMatrix_Has(t *testing.T) {
	csr := buildCSR(2, 5, []int32{0, 0, 1}, []int32{0, 4, 2})

	cases := []struct {
		r, j int
		want bool
	}{
		{0, 0, true},
		{0, 4, true},
		{0, 1, false},
		{1, 2, true},
		{1, 0, false},
	}
	for _, c := range cases {
		if got := csr.Has(c.r, c.j); got != c.want {
			t.Errorf("Has(%d,%d) = %v, want %v", c.r, c.j, got, c.want)
		}
	}
}

func TestCSRMatrix_ColumnSums(t *testing.T) {
	// col 0 present in rows 0,1; col 1 present in row 0 only; col 2 in none.
	csr := buildCSR(2, 3, []int32{0, 0, 1}, []int32{0, 1, 0})
	sums := csr.ColumnSums()
	want := []int64{2, 1, 0}
	if !reflect.DeepEqual(sums, want) {
		t.Errorf("ColumnSums() = %v, want %v", sums, want)
	}
}
