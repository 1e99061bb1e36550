package util

import "testing"

// TestMapHeapOrder tests that items are popped by ascending priority
func TestMapHeapOrder(t *testing.T) {
	h := NewMapHeap[string]()
	h.AddItem(1, 300, "c")
	h.AddItem(2, 100, "a")
	h.AddItem(3, 200, "b")

	if h.Len() != 3 {
		t.Fatalf("Heap should have 3 items, but has %d", h.Len())
	}

	first, ok := h.Peek()
	if !ok || first.Key != 2 {
		t.Fatalf("Peek() should return key 2, got %v", first)
	}

	want := []string{"a", "b", "c"}
	for i, w := range want {
		_, _, v, ok := h.PopMin()
		if !ok {
			t.Fatalf("PopMin() %d returned no item", i)
		}
		if v != w {
			t.Errorf("PopMin() %d = %q, want %q", i, v, w)
		}
	}

	if _, _, _, ok := h.PopMin(); ok {
		t.Error("PopMin() on an empty heap should report false")
	}
}

// TestMapHeapKeyAccess tests update, lookup and removal by key
func TestMapHeapKeyAccess(t *testing.T) {
	tests := []struct {
		name    string
		op      func(h *MapHeap[int])
		wantKey uint64
		wantLen int
	}{
		{
			name:    "update moves item to front",
			op:      func(h *MapHeap[int]) { h.AddItem(3, 10, 33) },
			wantKey: 3,
			wantLen: 3,
		},
		{
			name: "remove minimum",
			op: func(h *MapHeap[int]) {
				if p, ok := h.RemoveByKey(1); !ok || p != 100 {
					t.Errorf("RemoveByKey(1) = %d, %v", p, ok)
				}
			},
			wantKey: 2,
			wantLen: 2,
		},
		{
			name: "remove unknown key",
			op: func(h *MapHeap[int]) {
				if _, ok := h.RemoveByKey(42); ok {
					t.Error("RemoveByKey(42) should report false")
				}
			},
			wantKey: 1,
			wantLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMapHeap[int]()
			h.AddItem(1, 100, 11)
			h.AddItem(2, 200, 22)
			h.AddItem(3, 300, 33)

			tt.op(h)

			if h.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", h.Len(), tt.wantLen)
			}
			first, ok := h.Peek()
			if !ok || first.Key != tt.wantKey {
				t.Errorf("Peek() key = %v, want %d", first, tt.wantKey)
			}
			if !h.Contains(tt.wantKey) {
				t.Errorf("Contains(%d) should be true", tt.wantKey)
			}
			if it, ok := h.GetByKey(tt.wantKey); !ok || it.Value != int(tt.wantKey)*11 {
				t.Errorf("GetByKey(%d) = %v", tt.wantKey, it)
			}
		})
	}
}
