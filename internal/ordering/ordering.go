// Package ordering implements the precedence protocol shared by lifecycle
// interceptors, factory-level interceptors and configuration units.
//
// Values implementing PriorityOrdered sort first (by Priority, ascending), then
// values implementing Ordered (by Order, ascending), then everything else.
// Ties keep registration order.
package ordering

import (
	"math"
	"sort"
)

const (
	// HighestPrecedence is the smallest order value; it sorts first.
	HighestPrecedence = math.MinInt32
	// LowestPrecedence is the order assumed for values that declare none.
	LowestPrecedence = math.MaxInt32
)

// Ordered is implemented by values with a declared order.
type Ordered interface {
	Order() int
}

// PriorityOrdered is implemented by values that must run ahead of every
// Ordered or unordered value.
type PriorityOrdered interface {
	Priority() int
}

// Bucket identifies the precedence class of a value.
type Bucket int

const (
	BucketPriority Bucket = iota
	BucketOrdered
	BucketUnordered
)

func (b Bucket) String() string {
	switch b {
	case BucketPriority:
		return "priority"
	case BucketOrdered:
		return "ordered"
	default:
		return "unordered"
	}
}

// Weigh returns the bucket and in-bucket value for v.
func Weigh(v any) (Bucket, int) {
	if p, ok := v.(PriorityOrdered); ok {
		return BucketPriority, p.Priority()
	}
	if o, ok := v.(Ordered); ok {
		return BucketOrdered, o.Order()
	}
	return BucketUnordered, LowestPrecedence
}

// Sort returns a sorted copy of items. The input is not modified.
func Sort[T any](items []T) []T {
	type weighed struct {
		item   T
		bucket Bucket
		value  int
	}

	entries := make([]weighed, len(items))
	for i, item := range items {
		b, v := Weigh(item)
		entries[i] = weighed{item: item, bucket: b, value: v}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].bucket != entries[j].bucket {
			return entries[i].bucket < entries[j].bucket
		}
		return entries[i].value < entries[j].value
	})

	sorted := make([]T, len(entries))
	for i, e := range entries {
		sorted[i] = e.item
	}
	return sorted
}

// SortBy sorts items stably by an explicit order function, ascending.
func SortBy[T any](items []T, order func(T) int) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return order(sorted[i]) < order(sorted[j])
	})
	return sorted
}
