package detail

import "testing"

func TestQuantitySelectorSetFromText(t *testing.T) {
	cases := []struct {
		name       string
		remaining  int
		raw        string
		wantResult SetResult
		wantQty    int
	}{
		{"applies below stock", 10, "3", SetApplied, 3},
		{"clamps at stock", 10, "10", SetClamped, 10},
		{"clamps above stock", 10, "250", SetClamped, 10},
		{"ignores zero", 10, "0", SetIgnored, 1},
		{"ignores negative", 10, "-4", SetIgnored, 1},
		{"ignores fraction", 10, "2.5", SetIgnored, 1},
		{"ignores garbage", 10, "abc", SetIgnored, 1},
		{"ignores empty", 10, "", SetIgnored, 1},
		{"whole float accepted", 10, "4.0", SetApplied, 4},
		{"no stock clamps to floor", 0, "7", SetClamped, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQuantitySelector()
			q.Reset(tc.remaining)
			if got := q.SetFromText(tc.raw); got != tc.wantResult {
				t.Fatalf("SetFromText(%q) result = %v, want %v", tc.raw, got, tc.wantResult)
			}
			if got := q.Quantity(); got != tc.wantQty {
				t.Fatalf("quantity after SetFromText(%q) = %d, want %d", tc.raw, got, tc.wantQty)
			}
		})
	}
}

func TestQuantitySelectorIncrementStopsAtStock(t *testing.T) {
	q := NewQuantitySelector()
	q.Reset(5)
	for i := 0; i < 10; i++ {
		q.Increment()
	}
	if got := q.Quantity(); got != 5 {
		t.Fatalf("quantity = %d, want 5", got)
	}
}

func TestQuantitySelectorDecrementStopsAtOne(t *testing.T) {
	q := NewQuantitySelector()
	q.Reset(5)
	q.Increment()
	q.Decrement()
	q.Decrement()
	q.Decrement()
	if got := q.Quantity(); got != 1 {
		t.Fatalf("quantity = %d, want 1", got)
	}
}

func TestQuantitySelectorResetReturnsToOne(t *testing.T) {
	q := NewQuantitySelector()
	q.Reset(8)
	q.Increment()
	q.Increment()
	q.Reset(3)
	if got := q.Quantity(); got != 1 {
		t.Fatalf("quantity after reset = %d, want 1", got)
	}
	if got := q.Remaining(); got != 3 {
		t.Fatalf("remaining after reset = %d, want 3", got)
	}
}

func TestQuantitySelectorNoStockKeepsFloor(t *testing.T) {
	q := NewQuantitySelector()
	q.Reset(0)
	q.Increment()
	if got := q.Quantity(); got != 1 {
		t.Fatalf("quantity = %d, want 1", got)
	}
}
