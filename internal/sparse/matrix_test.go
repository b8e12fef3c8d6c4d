package sparse

import "testing"

func TestBuilder_AddRow(t *testing.T) {
	b := NewBuilder(5)
	if err := b.AddRow([]Entry{{Index: 3, Value: 1}, {Index: 0, Value: 2}, {Index: 3, Value: 1}}); err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	if err := b.AddRow(nil); err != nil {
		t.Fatalf("AddRow empty: %v", err)
	}
	if err := b.AddRow([]Entry{{Index: 4, Value: 0}, {Index: 1, Value: -1}}); err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	m := b.Build()

	if m.Rows != 3 || m.Cols != 5 {
		t.Fatalf("expected 3x5, got %dx%d", m.Rows, m.Cols)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if m.NNZ() != 3 {
		t.Errorf("expected 3 stored values (duplicates summed, zeros dropped), got %d", m.NNZ())
	}
	if got := m.At(0, 3); got != 2 {
		t.Errorf("At(0,3) = %v, want 2", got)
	}
	if got := m.At(0, 0); got != 2 {
		t.Errorf("At(0,0) = %v, want 2", got)
	}
	if got := m.At(1, 2); got != 0 {
		t.Errorf("At(1,2) = %v, want 0", got)
	}
	if got := m.At(2, 1); got != -1 {
		t.Errorf("At(2,1) = %v, want -1", got)
	}
}

func TestBuilder_OutOfRange(t *testing.T) {
	b := NewBuilder(2)
	if err := b.AddRow([]Entry{{Index: 2, Value: 1}}); err == nil {
		t.Error("expected error for column out of range")
	}
	if err := b.AddRow([]Entry{{Index: -1, Value: 1}}); err == nil {
		t.Error("expected error for negative column")
	}
}

func TestMatrix_VectorOps(t *testing.T) {
	m, err := FromDense([][]float64{
		{1, 0, 2},
		{0, 3, 0},
	}, 3)
	if err != nil {
		t.Fatalf("FromDense: %v", err)
	}

	w := []float64{1, 1, 1}
	if got := m.Dot(0, w); got != 3 {
		t.Errorf("Dot(0) = %v, want 3", got)
	}
	if got := m.NormSq(0); got != 5 {
		t.Errorf("NormSq(0) = %v, want 5", got)
	}

	m.AddScaled(1, 2, w)
	if w[1] != 7 {
		t.Errorf("AddScaled: w[1] = %v, want 7", w[1])
	}

	// Shorter weight vectors ignore trailing columns
	if got := m.Dot(0, []float64{1}); got != 1 {
		t.Errorf("Dot with short w = %v, want 1", got)
	}
}

func TestMatrix_Validate(t *testing.T) {
	tests := []struct {
		name string
		m    *Matrix
	}{
		{"nil", nil},
		{"short indptr", &Matrix{Rows: 2, Cols: 2, Indptr: []int{0, 0}}},
		{"length mismatch", &Matrix{Rows: 1, Cols: 2, Indptr: []int{0, 1}, Indices: []int{0}, Data: nil}},
		{"unsorted", &Matrix{Rows: 1, Cols: 3, Indptr: []int{0, 2}, Indices: []int{2, 1}, Data: []float64{1, 1}}},
		{"column range", &Matrix{Rows: 1, Cols: 1, Indptr: []int{0, 1}, Indices: []int{3}, Data: []float64{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.m.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
