// Package util
//
// This file provides a min-heap with key-based access.
//
// The implementation combines a binary heap with a hash map, so items can be
// taken in priority order and also found or removed by their key. The task
// executor uses it as its timer queue: the key is the timer id, the priority
// the deadline in unix nanoseconds and the value the sleeping future.
//
// Time Complexity:
//   - O(log n) for PushItem, PopMin, Update and RemoveByKey
//   - O(1) for Peek, Contains and GetByKey
//
// Concurrency Considerations:
//   - MapHeap is not thread-safe, callers synchronise externally
//
// Example usage:
//
//	h := NewMapHeap[string]()
//	h.AddItem(1, 300, "late")
//	h.AddItem(2, 100, "early")
//
//	key, priority, value, ok := h.PopMin() // 2, 100, "early", true
package util

import (
	"container/heap"
	"strconv"
)

// item is one entry of a MapHeap.
type item[V any] struct {
	Key      uint64 // Unique identifier for the item
	Priority uint64 // Lower priorities are popped first
	Value    V
	index    int // Index in the heap, maintained by heap package
}

func (i *item[V]) String() string {
	return "{Key: " + strconv.FormatUint(i.Key, 10) + ", Priority: " + strconv.FormatUint(i.Priority, 10) + "}"
}

// MapHeap is a min-heap ordered by priority that also supports access by key.
type MapHeap[V any] struct {
	items    []*item[V]
	itemsMap map[uint64]*item[V]
}

// NewMapHeap creates an empty heap.
func NewMapHeap[V any]() *MapHeap[V] {
	return &MapHeap[V]{
		items:    make([]*item[V], 0),
		itemsMap: make(map[uint64]*item[V]),
	}
}

// Len returns the number of items (part of heap.Interface).
func (h *MapHeap[V]) Len() int { return len(h.items) }

// Less orders by priority (part of heap.Interface).
func (h *MapHeap[V]) Less(i, j int) bool {
	return h.items[i].Priority < h.items[j].Priority
}

// Swap exchanges items at positions i and j (part of heap.Interface).
func (h *MapHeap[V]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

// Push adds an *item[V] (part of heap.Interface, use AddItem instead).
func (h *MapHeap[V]) Push(x interface{}) {
	it := x.(*item[V])
	it.index = len(h.items)
	h.items = append(h.items, it)
	h.itemsMap[it.Key] = it
}

// Pop removes the last item (part of heap.Interface, use PopMin instead).
func (h *MapHeap[V]) Pop() interface{} {
	old := h.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // avoid memory leak
	it.index = -1
	h.items = old[:n-1]
	delete(h.itemsMap, it.Key)
	return it
}

// AddItem inserts a new item, or updates priority and value of an existing key.
func (h *MapHeap[V]) AddItem(key, priority uint64, value V) {
	if it, exists := h.itemsMap[key]; exists {
		it.Priority = priority
		it.Value = value
		heap.Fix(h, it.index)
		return
	}

	heap.Push(h, &item[V]{
		Key:      key,
		Priority: priority,
		Value:    value,
	})
}

// PopMin removes and returns the item with the lowest priority.
func (h *MapHeap[V]) PopMin() (key, priority uint64, value V, ok bool) {
	if len(h.items) == 0 {
		return 0, 0, value, false
	}
	it := heap.Pop(h).(*item[V])
	return it.Key, it.Priority, it.Value, true
}

// Peek returns the lowest priority item without removing it.
func (h *MapHeap[V]) Peek() (*item[V], bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return h.items[0], true
}

// RemoveByKey removes the item with the given key and returns its priority.
func (h *MapHeap[V]) RemoveByKey(key uint64) (uint64, bool) {
	it, exists := h.itemsMap[key]
	if !exists {
		return 0, false
	}
	heap.Remove(h, it.index)
	return it.Priority, true
}

// Contains checks if a key exists in the heap.
func (h *MapHeap[V]) Contains(key uint64) bool {
	_, exists := h.itemsMap[key]
	return exists
}

// GetByKey retrieves an item by its key without removing it.
func (h *MapHeap[V]) GetByKey(key uint64) (*item[V], bool) {
	it, exists := h.itemsMap[key]
	return it, exists
}
