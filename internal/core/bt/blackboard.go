package bt

import (
	"math"
	"sort"
)

// Blackboard is the key/value store shared by the nodes of one tree.
//
// Reads never fail: a missing key or a value of another kind yields the zero
// value of the requested type. A Blackboard is driven by the same goroutine as
// its tree and is not safe for concurrent use. All methods accept a nil
// receiver and behave as on an empty board.
type Blackboard struct {
	values map[string]Value
}

func NewBlackboard() *Blackboard {
	return &Blackboard{values: make(map[string]Value)}
}

// Set inserts or overwrites key. Setting an empty Value removes an existing
// key; on an absent key it inserts the empty Value.
func (bb *Blackboard) Set(key string, v Value) {
	if bb == nil {
		return
	}
	if _, ok := bb.values[key]; ok && v.IsEmpty() {
		delete(bb.values, key)
		return
	}
	if bb.values == nil {
		bb.values = make(map[string]Value)
	}
	bb.values[key] = v
}

func (bb *Blackboard) Lookup(key string) (Value, bool) {
	if bb == nil {
		return Value{}, false
	}
	v, ok := bb.values[key]
	return v, ok
}

func (bb *Blackboard) Has(key string) bool {
	_, ok := bb.Lookup(key)
	return ok
}

func (bb *Blackboard) Delete(key string) {
	if bb == nil {
		return
	}
	delete(bb.values, key)
}

func (bb *Blackboard) Len() int {
	if bb == nil {
		return 0
	}
	return len(bb.values)
}

// Keys returns the stored keys in sorted order.
func (bb *Blackboard) Keys() []string {
	if bb == nil {
		return nil
	}
	keys := make([]string, 0, len(bb.values))
	for k := range bb.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (bb *Blackboard) Number(key string) float64 { return Get[float64](bb, key) }

func (bb *Blackboard) Bool(key string) bool { return Get[bool](bb, key) }

func (bb *Blackboard) Text(key string) string { return Get[string](bb, key) }

func (bb *Blackboard) Vector(key string) Vec3 { return Get[Vec3](bb, key) }

// Handle returns the reference stored under key, or nil.
func (bb *Blackboard) Handle(key string) any {
	v, ok := bb.Lookup(key)
	if !ok || v.Kind() != KindHandle {
		return nil
	}
	return v.ref
}

// Snapshot copies every payload into a plain map.
func (bb *Blackboard) Snapshot() map[string]any {
	out := make(map[string]any, bb.Len())
	if bb == nil {
		return out
	}
	for k, v := range bb.values {
		out[k] = v.Any()
	}
	return out
}

// Get views the value stored under key as T. Number payloads convert to any
// Go integer or float type they fit in. Anything else that is not a T yields
// T's zero value.
func Get[T any](bb *Blackboard, key string) T {
	var zero T
	v, ok := bb.Lookup(key)
	if !ok {
		return zero
	}
	if t, ok := v.Any().(T); ok {
		return t
	}
	if v.Kind() == KindNumber {
		if t, ok := convertNumber[T](v.num); ok {
			return t
		}
	}
	return zero
}

// convertNumber views f as T. Integer targets need a whole f within T's
// range; float32 needs a finite f within float32's range.
func convertNumber[T any](f float64) (T, bool) {
	var zero T
	var out any
	switch any(zero).(type) {
	case int:
		if !fitsInt(f, math.MinInt, math.MaxInt) {
			return zero, false
		}
		out = int(f)
	case int8:
		if !fitsInt(f, math.MinInt8, math.MaxInt8) {
			return zero, false
		}
		out = int8(f)
	case int16:
		if !fitsInt(f, math.MinInt16, math.MaxInt16) {
			return zero, false
		}
		out = int16(f)
	case int32:
		if !fitsInt(f, math.MinInt32, math.MaxInt32) {
			return zero, false
		}
		out = int32(f)
	case int64:
		if !fitsInt(f, math.MinInt64, math.MaxInt64) {
			return zero, false
		}
		out = int64(f)
	case uint:
		if !fitsUint(f, math.MaxUint) {
			return zero, false
		}
		out = uint(f)
	case uint8:
		if !fitsUint(f, math.MaxUint8) {
			return zero, false
		}
		out = uint8(f)
	case uint16:
		if !fitsUint(f, math.MaxUint16) {
			return zero, false
		}
		out = uint16(f)
	case uint32:
		if !fitsUint(f, math.MaxUint32) {
			return zero, false
		}
		out = uint32(f)
	case uint64:
		if !fitsUint(f, math.MaxUint64) {
			return zero, false
		}
		out = uint64(f)
	case float32:
		if math.IsNaN(f) || math.Abs(f) > math.MaxFloat32 {
			return zero, false
		}
		out = float32(f)
	default:
		return zero, false
	}
	return out.(T), true
}

// fitsInt reports whether f is a whole number in [lo, hi]. float64(hi)+1 is
// exact for narrow types and rounds to 2^63 for 64-bit ones, so the upper
// bound is exclusive.
func fitsInt(f float64, lo, hi int64) bool {
	return math.Trunc(f) == f && f >= float64(lo) && f < float64(hi)+1
}

func fitsUint(f float64, hi uint64) bool {
	return math.Trunc(f) == f && f >= 0 && f < float64(hi)+1
}
