package interp

import (
	"fmt"
	"math"

	"github.com/metaphox/loxwalk/ast"
)

// Kind identifies the runtime category of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindNativeFunction
	// KindObject is reserved for a future struct/instance value; nothing in
	// this interpreter produces one, but equality and printing already
	// account for it (§4.3: Object comparison is always-false).
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the shared behaviour for every runtime value.
type Value interface {
	Kind() Kind
	// Format renders the value the way `print` does.
	Format() string
}

// NilValue is the sole value of kind Nil.
type NilValue struct{}

func (NilValue) Kind() Kind     { return KindNil }
func (NilValue) Format() string { return "nil" }

// BoolValue wraps a boolean.
type BoolValue struct{ Val bool }

func (v BoolValue) Kind() Kind { return KindBool }
func (v BoolValue) Format() string {
	if v.Val {
		return "true"
	}
	return "false"
}

// NumberValue wraps a float64 — the only numeric type in the language.
type NumberValue struct{ Val float64 }

func (v NumberValue) Kind() Kind { return KindNumber }
func (v NumberValue) Format() string {
	if math.IsInf(v.Val, 0) || math.IsNaN(v.Val) {
		return fmt.Sprintf("%g", v.Val)
	}
	// Integral values (within int64 range) print without a fractional part
	// ("3", not "3.000000"); everything else uses %g's shortest form.
	if v.Val == float64(int64(v.Val)) {
		return fmt.Sprintf("%d", int64(v.Val))
	}
	return fmt.Sprintf("%g", v.Val)
}

// StringValue wraps a string.
type StringValue struct{ Val string }

func (v StringValue) Kind() Kind     { return KindString }
func (v StringValue) Format() string { return v.Val }

// Callable is implemented by every value that can appear on the left of a
// call expression.
type Callable interface {
	Value
	// Arity reports the number of arguments this callable requires, or -1
	// if it does not enforce one.
	Arity() int
}

// UserFunction is a Callable backed by a parsed FunDecl. It carries no
// reference to the environment in effect at its declaration — calling it
// pushes a frame onto the *caller's* current stack, so it is not a
// closure (§5, §9).
type UserFunction struct {
	Decl *ast.FunDecl
	Name string
}

func (f *UserFunction) Kind() Kind     { return KindFunction }
func (f *UserFunction) Format() string { return "[callable]" }
func (f *UserFunction) Arity() int     { return len(f.Decl.Params) }

// NativeFunction wraps a Go function exposed to interpreted code. Per §9,
// arity is not enforced for native functions — Fn is simply invoked with
// whatever arguments were passed.
type NativeFunction struct {
	FnName string
	Fn     func(args []Value) Value
}

func (f *NativeFunction) Kind() Kind     { return KindNativeFunction }
func (f *NativeFunction) Format() string { return "[callable]" }
func (f *NativeFunction) Arity() int     { return -1 }
func (f *NativeFunction) Name() string   { return f.FnName }

// Truthy implements the language's truthiness rule: nil and false are
// falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case NilValue:
		return false
	case BoolValue:
		return v.Val
	default:
		return true
	}
}

// Equal implements same-kind equality. Different kinds are never equal;
// Object comparison (reserved, unused) is always false.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case NilValue:
		return true
	case BoolValue:
		return a.Val == b.(BoolValue).Val
	case NumberValue:
		return a.Val == b.(NumberValue).Val
	case StringValue:
		return a.Val == b.(StringValue).Val
	default:
		return false
	}
}
