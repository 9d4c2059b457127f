package merge

import "fmt"

// Value is a tagged union over the two shapes a merged counter leaf can
// take: a plain number, or a nested string-keyed map of more Values. This
// mirrors the source system's dynamically-typed "number, hashmap, or
// error" merge rule (§9 Design Notes) as an explicit sum type.
type Value struct {
	isMap  bool
	number int
	m      map[string]Value
}

// Number wraps a leaf integer.
func Number(n int) Value { return Value{number: n} }

// Map wraps a nested map of Values.
func Map(m map[string]Value) Value { return Value{isMap: true, m: m} }

// Merge combines two Values: numbers add, maps recurse key by key
// summing leaves, and any other pairing is fatal — it signals schema
// drift between node versions that merging must not paper over (§4.8
// item 5).
func (a Value) Merge(b Value) (Value, error) {
	if a.isMap != b.isMap {
		return Value{}, fmt.Errorf("merge: incompatible merge: number vs map")
	}
	if !a.isMap {
		return Number(a.number + b.number), nil
	}

	out := make(map[string]Value, len(a.m))
	for k, v := range a.m {
		out[k] = v
	}
	for k, v := range b.m {
		existing, ok := out[k]
		if !ok {
			out[k] = v
			continue
		}
		merged, err := existing.Merge(v)
		if err != nil {
			return Value{}, fmt.Errorf("merge: key %q: %w", k, err)
		}
		out[k] = merged
	}
	return Map(out), nil
}

// Int returns the leaf integer, or 0 if this Value is a map.
func (a Value) Int() int { return a.number }

// Entries returns the nested map, or nil if this Value is a number.
func (a Value) Entries() map[string]Value { return a.m }
