package bt

import (
	"fmt"
	"reflect"
)

// Kind tags the payload held by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindNumber
	KindBool
	KindText
	KindVector
	KindHandle
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindVector:
		return "vector"
	case KindHandle:
		return "handle"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a blackboard entry. The zero Value is empty.
type Value struct {
	kind Kind
	num  float64
	flag bool
	text string
	vec  Vec3
	ref  any
}

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func Int(i int) Value { return Number(float64(i)) }

func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

func Text(s string) Value { return Value{kind: KindText, text: s} }

func Vector(v Vec3) Value { return Value{kind: KindVector, vec: v} }

// Handle wraps a reference to a host object. A nil reference, including a
// typed nil pointer, yields the empty Value.
func Handle(ref any) Value {
	if isNil(ref) {
		return Value{}
	}
	return Value{kind: KindHandle, ref: ref}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsEmpty() bool { return v.kind == KindNone }

// Any returns the payload: float64, bool, string, Vec3, the handle reference,
// or nil for the empty value.
func (v Value) Any() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindText:
		return v.text
	case KindVector:
		return v.vec
	case KindHandle:
		return v.ref
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.kind == KindNone {
		return "<empty>"
	}
	return fmt.Sprintf("%v", v.Any())
}

func isNil(ref any) bool {
	if ref == nil {
		return true
	}
	rv := reflect.ValueOf(ref)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
