// Package interp implements the tree-walking evaluator: a single
// recursive function pair (evalStmt/evalExpr) that walks an [ast.Program]
// and drives an [Environment].
//
// Non-local control flow — break, continue, return, and runtime errors —
// is modelled as a [Result] sum type rather than panics or a language of
// exceptions. Every recursive call inspects the Result it gets back and
// either consumes it (a loop absorbing Break/Continue, a function call
// absorbing Return) or propagates it unchanged.
package interp

import (
	"fmt"
	"io"
	"time"

	"github.com/metaphox/loxwalk/ast"
)

// ResultKind discriminates the variants of [Result].
type ResultKind int

const (
	ResOk ResultKind = iota
	ResBreak
	ResContinue
	ResReturn
	ResError
)

// Result is the outcome of evaluating one statement or expression. Value
// is meaningful for ResOk and ResReturn; ErrMessage/ErrToken are
// meaningful for ResError.
type Result struct {
	Kind       ResultKind
	Value      Value
	ErrMessage string
	ErrToken   ast.Token
}

func ok(v Value) Result   { return Result{Kind: ResOk, Value: v} }
func brk() Result         { return Result{Kind: ResBreak} }
func cont() Result        { return Result{Kind: ResContinue} }
func ret(v Value) Result  { return Result{Kind: ResReturn, Value: v} }

func errAt(tok ast.Token, format string, args ...any) Result {
	return Result{Kind: ResError, ErrMessage: fmt.Sprintf(format, args...), ErrToken: tok}
}

// Evaluator walks a parsed program against a single [Environment],
// writing `print` output to Out.
type Evaluator struct {
	Env *Environment
	Out io.Writer
	src string
}

// New creates an Evaluator over src (the exact source the program was
// parsed from) and registers the native builtins in the global frame.
// src is kept on the Evaluator; evaluation reads names from the AST, which
// the parser has already resolved to strings.
func New(out io.Writer, src string) *Evaluator {
	ev := &Evaluator{Env: NewEnvironment(), Out: out, src: src}
	ev.defineNatives()
	return ev
}

func (ev *Evaluator) defineNatives() {
	ev.Env.Define("clock", &NativeFunction{
		FnName: "clock",
		Fn: func(args []Value) Value {
			return NumberValue{Val: float64(time.Now().UnixNano()) / 1e9}
		},
	})
}

// Run evaluates every top-level declaration in order. It stops and
// returns the first non-Ok result — reaching the end of a well-formed
// program always returns an Ok.
func (ev *Evaluator) Run(prog *ast.Program) Result {
	for _, s := range prog.Stmts {
		if r := ev.evalStmt(s); r.Kind != ResOk {
			return r
		}
	}
	return ok(NilValue{})
}

// ── Statements ────────────────────────────────────────────────────────────────

func (ev *Evaluator) evalStmt(s ast.Stmt) Result {
	switch s := s.(type) {
	case *ast.ExprStmt:
		_, r := ev.evalExpr(s.Expr)
		if r.Kind == ResError {
			return r
		}
		return ok(NilValue{})

	case *ast.Print:
		v, r := ev.evalExpr(s.Expr)
		if r.Kind == ResError {
			return r
		}
		fmt.Fprintln(ev.Out, v.Format())
		return ok(NilValue{})

	case *ast.VarDecl:
		var v Value = NilValue{}
		if s.Init != nil {
			var r Result
			v, r = ev.evalExpr(s.Init)
			if r.Kind == ResError {
				return r
			}
		}
		ev.Env.Define(s.Name, v)
		return ok(NilValue{})

	case *ast.FunDecl:
		ev.Env.Define(s.Name, &UserFunction{Decl: s, Name: s.Name})
		return ok(NilValue{})

	case *ast.Block:
		return ev.evalBlock(s)

	case *ast.If:
		return ev.evalIf(s)

	case *ast.For:
		return ev.evalFor(s)

	case *ast.Break:
		return brk()

	case *ast.Continue:
		return cont()

	case *ast.Return:
		if s.Value == nil {
			return ret(NilValue{})
		}
		v, r := ev.evalExpr(s.Value)
		if r.Kind == ResError {
			return r
		}
		return ret(v)

	default:
		return errAt(s.Pos(), "unhandled statement %T", s)
	}
}

// evalBlock pushes a fresh frame, runs every statement in order, and pops
// the frame on every exit path — normal completion, error, break,
// continue, or return.
func (ev *Evaluator) evalBlock(b *ast.Block) Result {
	ev.Env.Push()
	defer ev.Env.Pop()
	for _, st := range b.Stmts {
		if r := ev.evalStmt(st); r.Kind != ResOk {
			return r
		}
	}
	return ok(NilValue{})
}

func (ev *Evaluator) evalIf(s *ast.If) Result {
	cond, r := ev.evalExpr(s.Cond)
	if r.Kind == ResError {
		return r
	}
	if Truthy(cond) {
		return ev.evalStmt(s.Then)
	}
	if s.Else != nil {
		return ev.evalStmt(s.Else)
	}
	return ok(NilValue{})
}

// evalFor implements both while (Init/Incr nil) and for, per §4.3: run
// Init once, then repeatedly evaluate Cond (absent means true), run Body,
// and react to its Result — Error/Return propagate, Break stops the loop
// cleanly, Continue and plain Ok both fall through to Incr.
func (ev *Evaluator) evalFor(s *ast.For) Result {
	if s.Init != nil {
		if r := ev.evalStmt(s.Init); r.Kind != ResOk {
			return r
		}
	}
	for {
		if s.Cond != nil {
			cond, r := ev.evalExpr(s.Cond)
			if r.Kind == ResError {
				return r
			}
			if !Truthy(cond) {
				break
			}
		}

		r := ev.evalStmt(s.Body)
		switch r.Kind {
		case ResError, ResReturn:
			return r
		case ResBreak:
			return ok(NilValue{})
		case ResContinue, ResOk:
			// fall through to the increment
		}

		if s.Incr != nil {
			if _, r := ev.evalExpr(s.Incr); r.Kind == ResError {
				return r
			}
		}
	}
	return ok(NilValue{})
}

// ── Expressions ───────────────────────────────────────────────────────────────

func (ev *Evaluator) evalExpr(e ast.Expr) (Value, Result) {
	switch e := e.(type) {
	case *ast.Literal:
		return literalValue(e), ok(nil)

	case *ast.Grouping:
		return ev.evalExpr(e.Inner)

	case *ast.Identifier:
		if v, found := ev.Env.Get(e.Name); found {
			return v, ok(nil)
		}
		return nil, errAt(e.Token, "undefined variable %q", e.Name)

	case *ast.Unary:
		return ev.evalUnary(e)

	case *ast.Binary:
		return ev.evalBinary(e)

	case *ast.LogicAnd:
		left, r := ev.evalExpr(e.Left)
		if r.Kind == ResError {
			return nil, r
		}
		if !Truthy(left) {
			return BoolValue{Val: false}, ok(nil)
		}
		right, r := ev.evalExpr(e.Right)
		if r.Kind == ResError {
			return nil, r
		}
		return BoolValue{Val: Truthy(right)}, ok(nil)

	case *ast.LogicOr:
		left, r := ev.evalExpr(e.Left)
		if r.Kind == ResError {
			return nil, r
		}
		if Truthy(left) {
			return BoolValue{Val: true}, ok(nil)
		}
		right, r := ev.evalExpr(e.Right)
		if r.Kind == ResError {
			return nil, r
		}
		return BoolValue{Val: Truthy(right)}, ok(nil)

	case *ast.Assignment:
		return ev.evalAssignment(e)

	case *ast.Call:
		return ev.evalCall(e)

	default:
		return nil, errAt(e.Pos(), "unhandled expression %T", e)
	}
}

func literalValue(e *ast.Literal) Value {
	switch v := e.Value.(type) {
	case nil:
		return NilValue{}
	case bool:
		return BoolValue{Val: v}
	case float64:
		return NumberValue{Val: v}
	case string:
		return StringValue{Val: v}
	default:
		return NilValue{}
	}
}

func (ev *Evaluator) evalUnary(e *ast.Unary) (Value, Result) {
	right, r := ev.evalExpr(e.Right)
	if r.Kind == ResError {
		return nil, r
	}
	switch e.Op {
	case ast.Minus:
		n, ok := right.(NumberValue)
		if !ok {
			return nil, errAt(e.Token, "unary '-' expects a number, got %s", right.Kind())
		}
		return NumberValue{Val: -n.Val}, Result{}
	case ast.Bang:
		return BoolValue{Val: !Truthy(right)}, Result{}
	default:
		return nil, errAt(e.Token, "unhandled unary operator %v", e.Op)
	}
}

func (ev *Evaluator) evalBinary(e *ast.Binary) (Value, Result) {
	left, r := ev.evalExpr(e.Left)
	if r.Kind == ResError {
		return nil, r
	}
	right, r := ev.evalExpr(e.Right)
	if r.Kind == ResError {
		return nil, r
	}

	switch e.Op {
	case ast.EqualEqual:
		return BoolValue{Val: Equal(left, right)}, Result{}
	case ast.BangEqual:
		return BoolValue{Val: !Equal(left, right)}, Result{}
	case ast.Plus:
		if ln, ok := left.(NumberValue); ok {
			rn, ok := right.(NumberValue)
			if !ok {
				return nil, errAt(e.Token, "'+' expects number + number, right side is %s", right.Kind())
			}
			return NumberValue{Val: ln.Val + rn.Val}, Result{}
		}
		if ls, ok := left.(StringValue); ok {
			rs, ok := right.(StringValue)
			if !ok {
				return nil, errAt(e.Token, "'+' expects string + string, right side is %s", right.Kind())
			}
			return StringValue{Val: ls.Val + rs.Val}, Result{}
		}
		return nil, errAt(e.Token, "'+' expects two numbers or two strings, left side is %s", left.Kind())
	case ast.Minus, ast.Star, ast.Slash, ast.Greater, ast.GreaterEqual, ast.Less, ast.LessEqual:
		ln, ok := left.(NumberValue)
		if !ok {
			return nil, errAt(e.Token, "%v expects a number on the left, got %s", e.Op, left.Kind())
		}
		rn, ok := right.(NumberValue)
		if !ok {
			return nil, errAt(e.Token, "%v expects a number on the right, got %s", e.Op, right.Kind())
		}
		switch e.Op {
		case ast.Minus:
			return NumberValue{Val: ln.Val - rn.Val}, Result{}
		case ast.Star:
			return NumberValue{Val: ln.Val * rn.Val}, Result{}
		case ast.Slash:
			return NumberValue{Val: ln.Val / rn.Val}, Result{}
		case ast.Greater:
			return BoolValue{Val: ln.Val > rn.Val}, Result{}
		case ast.GreaterEqual:
			return BoolValue{Val: ln.Val >= rn.Val}, Result{}
		case ast.Less:
			return BoolValue{Val: ln.Val < rn.Val}, Result{}
		case ast.LessEqual:
			return BoolValue{Val: ln.Val <= rn.Val}, Result{}
		}
	}
	return nil, errAt(e.Token, "unhandled binary operator %v", e.Op)
}

// evalAssignment evaluates the right side only if the target name is
// already bound somewhere on the environment stack (§4.3) — an unbound
// name is an error and the right side is never evaluated.
func (ev *Evaluator) evalAssignment(e *ast.Assignment) (Value, Result) {
	if _, found := ev.Env.Get(e.Target.Name); !found {
		return nil, errAt(e.Token, "undefined variable %q", e.Target.Name)
	}
	v, r := ev.evalExpr(e.Value)
	if r.Kind == ResError {
		return nil, r
	}
	ev.Env.Assign(e.Target.Name, v)
	return v, Result{}
}

func (ev *Evaluator) evalCall(e *ast.Call) (Value, Result) {
	callee, r := ev.evalExpr(e.Callee)
	if r.Kind == ResError {
		return nil, r
	}
	callable, ok := callee.(Callable)
	if !ok {
		return nil, errAt(e.Token, "value of kind %s is not callable", callee.Kind())
	}

	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, r := ev.evalExpr(a)
		if r.Kind == ResError {
			return nil, r
		}
		args = append(args, v)
	}

	switch fn := callable.(type) {
	case *UserFunction:
		return ev.callUserFunction(e, fn, args)
	case *NativeFunction:
		ev.Env.Push()
		defer ev.Env.Pop()
		return fn.Fn(args), Result{}
	default:
		return nil, errAt(e.Token, "value of kind %s is not callable", callee.Kind())
	}
}

func (ev *Evaluator) callUserFunction(call *ast.Call, fn *UserFunction, args []Value) (Value, Result) {
	if len(args) != fn.Arity() {
		return nil, errAt(call.Token, "Expected %d argument(s) to call function %q. %d argument(s) given.",
			fn.Arity(), fn.Name, len(args))
	}

	ev.Env.Push()
	defer ev.Env.Pop()
	for i, name := range fn.Decl.ParamNames {
		ev.Env.Define(name, args[i])
	}

	bodyResult := ev.evalBlock(fn.Decl.Body)
	switch bodyResult.Kind {
	case ResOk:
		return NilValue{}, Result{}
	case ResReturn:
		return bodyResult.Value, Result{}
	case ResError:
		return nil, bodyResult
	default:
		// Break/Continue escaping a function body is impossible by
		// construction — the parser rejects break/continue outside a loop,
		// and a function body resets that context (parser.go: funDecl).
		return nil, errAt(call.Token, "internal error: %v escaped a function body", bodyResult.Kind)
	}
}
