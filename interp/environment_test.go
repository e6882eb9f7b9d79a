package interp

import "testing"

func TestEnvironment_DefineAndGet(t *testing.T) {
	e := NewEnvironment()
	e.Define("x", NumberValue{Val: 1})
	v, ok := e.Get("x")
	if !ok {
		t.Fatal("expected x to be found")
	}
	if v.(NumberValue).Val != 1 {
		t.Fatalf("got %v, want 1", v)
	}
}

func TestEnvironment_GetMissingFails(t *testing.T) {
	e := NewEnvironment()
	if _, ok := e.Get("missing"); ok {
		t.Fatal("expected Get on an unbound name to fail")
	}
}

func TestEnvironment_InnerFrameShadowsOuter(t *testing.T) {
	e := NewEnvironment()
	e.Define("x", NumberValue{Val: 1})
	e.Push()
	e.Define("x", NumberValue{Val: 2})

	v, _ := e.Get("x")
	if v.(NumberValue).Val != 2 {
		t.Fatalf("got %v, want the inner binding 2", v)
	}

	e.Pop()
	v, _ = e.Get("x")
	if v.(NumberValue).Val != 1 {
		t.Fatalf("after Pop got %v, want the outer binding 1", v)
	}
}

func TestEnvironment_AssignWritesToNearestBindingFrame(t *testing.T) {
	e := NewEnvironment()
	e.Define("x", NumberValue{Val: 1})
	e.Push()
	if !e.Assign("x", NumberValue{Val: 99}) {
		t.Fatal("expected Assign to find x in the outer frame")
	}
	e.Pop()
	v, _ := e.Get("x")
	if v.(NumberValue).Val != 99 {
		t.Fatalf("got %v, want 99 — assign should not have created a new binding", v)
	}
}

func TestEnvironment_AssignToUnboundNameFails(t *testing.T) {
	e := NewEnvironment()
	if e.Assign("ghost", NumberValue{Val: 1}) {
		t.Fatal("expected Assign on an unbound name to fail")
	}
}

func TestEnvironment_DepthTracksPushAndPop(t *testing.T) {
	e := NewEnvironment()
	if e.Depth() != 1 {
		t.Fatalf("got depth %d, want 1 for a fresh environment", e.Depth())
	}
	e.Push()
	e.Push()
	if e.Depth() != 3 {
		t.Fatalf("got depth %d, want 3", e.Depth())
	}
	e.Pop()
	if e.Depth() != 2 {
		t.Fatalf("got depth %d, want 2", e.Depth())
	}
}

func TestEnvironment_PoppingGlobalFramePanics(t *testing.T) {
	e := NewEnvironment()
	defer func() {
		if recover() == nil {
			t.Fatal("expected popping the last frame to panic")
		}
	}()
	e.Pop()
}
