package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type plain struct{ name string }

type ordered struct {
	name  string
	order int
}

func (o ordered) Order() int { return o.order }

type prioritized struct {
	name     string
	priority int
}

func (p prioritized) Priority() int { return p.priority }

func names(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case plain:
			out = append(out, v.name)
		case ordered:
			out = append(out, v.name)
		case prioritized:
			out = append(out, v.name)
		}
	}
	return out
}

func TestSort_BucketsThenValues(t *testing.T) {
	items := []any{
		plain{"p1"},
		ordered{"o10", 10},
		prioritized{"h5", 5},
		ordered{"o-1", -1},
		plain{"p2"},
		prioritized{"h1", 1},
	}

	sorted := Sort(items)

	assert.Equal(t, []string{"h1", "h5", "o-1", "o10", "p1", "p2"}, names(sorted))
	// input untouched
	assert.Equal(t, "p1", names(items)[0])
}

func TestSort_TiesKeepRegistrationOrder(t *testing.T) {
	items := []any{
		ordered{"a", 3},
		ordered{"b", 3},
		prioritized{"c", 0},
		prioritized{"d", 0},
		ordered{"e", 3},
	}

	assert.Equal(t, []string{"c", "d", "a", "b", "e"}, names(Sort(items)))
}

func TestSort_PriorityBeatsLowerOrderValue(t *testing.T) {
	items := []any{
		ordered{"ordered-first", HighestPrecedence},
		prioritized{"priority-last", LowestPrecedence},
	}

	assert.Equal(t, []string{"priority-last", "ordered-first"}, names(Sort(items)))
}

func TestWeigh(t *testing.T) {
	b, v := Weigh(prioritized{"x", 7})
	assert.Equal(t, BucketPriority, b)
	assert.Equal(t, 7, v)

	b, v = Weigh(ordered{"x", -3})
	assert.Equal(t, BucketOrdered, b)
	assert.Equal(t, -3, v)

	b, v = Weigh(plain{"x"})
	assert.Equal(t, BucketUnordered, b)
	assert.Equal(t, LowestPrecedence, v)

	assert.Equal(t, "priority", BucketPriority.String())
	assert.Equal(t, "unordered", BucketUnordered.String())
}

func TestSortBy(t *testing.T) {
	in := []int{5, 1, 4, 1}
	out := SortBy(in, func(v int) int { return v })

	assert.Equal(t, []int{1, 1, 4, 5}, out)
	assert.Equal(t, []int{5, 1, 4, 1}, in)
}

func TestSort_Empty(t *testing.T) {
	assert.Empty(t, Sort[any](nil))
}
