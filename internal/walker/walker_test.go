package walker

import (
	"context"
	"errors"
	"testing"

	"apidrift/internal/model"
)

type recorder struct {
	events  []string
	descend bool
}

func label(p model.Pair) string {
	switch {
	case p.Old == nil:
		return "(-," + p.New.Signature() + ")"
	case p.New == nil:
		return "(" + p.Old.Signature() + ",-)"
	}
	return "(" + p.Old.Signature() + "," + p.New.Signature() + ")"
}

func (r *recorder) Enter(p model.Pair) (bool, error) {
	r.events = append(r.events, "enter"+label(p))
	return r.descend, nil
}

func (r *recorder) Leave(p model.Pair) error {
	r.events = append(r.events, "leave"+label(p))
	return nil
}

func forestOf(sigs ...string) *model.Forest {
	f := model.NewForest("test")
	for _, s := range sigs {
		f.AddRoot(model.New(model.KindType, s, "type "+s, ""))
	}
	return f
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestMatchedRootsInOrder(t *testing.T) {
	r := &recorder{descend: true}
	if err := Walk(context.Background(), forestOf("A", "B", "C"), forestOf("A", "B", "C"), r); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	assertEvents(t, r.events, []string{
		"enter(A,A)", "leave(A,A)",
		"enter(B,B)", "leave(B,B)",
		"enter(C,C)", "leave(C,C)",
	})
}

func TestHalfPairsFromDisjointRoots(t *testing.T) {
	r := &recorder{descend: true}
	if err := Walk(context.Background(), forestOf("A", "C"), forestOf("B", "C"), r); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	assertEvents(t, r.events, []string{
		"enter(A,-)", "leave(A,-)",
		"enter(-,B)", "leave(-,B)",
		"enter(C,C)", "leave(C,C)",
	})
}

func TestEmptySideYieldsAllHalfPairs(t *testing.T) {
	r := &recorder{descend: true}
	if err := Walk(context.Background(), forestOf("A", "B"), model.NewForest("test"), r); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	assertEvents(t, r.events, []string{
		"enter(A,-)", "leave(A,-)",
		"enter(B,-)", "leave(B,-)",
	})
}

func TestDepthFirstNesting(t *testing.T) {
	oldF := forestOf("A")
	newF := forestOf("A")
	oldF.Roots()[0].AddChild(model.New(model.KindMethod, "m", "", ""))
	newF.Roots()[0].AddChild(model.New(model.KindMethod, "m", "", ""))

	r := &recorder{descend: true}
	if err := Walk(context.Background(), oldF, newF, r); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	assertEvents(t, r.events, []string{
		"enter(A,A)", "enter(m,m)", "leave(m,m)", "leave(A,A)",
	})
}

func TestEnterVetoSkipsSubtree(t *testing.T) {
	oldF := forestOf("A")
	oldF.Roots()[0].AddChild(model.New(model.KindMethod, "m", "", ""))

	r := &recorder{descend: false}
	if err := Walk(context.Background(), oldF, forestOf("A"), r); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	assertEvents(t, r.events, []string{"enter(A,A)", "leave(A,A)"})
}

func TestMixedChildrenZip(t *testing.T) {
	oldF := forestOf("T")
	newF := forestOf("T")
	oldRoot, newRoot := oldF.Roots()[0], newF.Roots()[0]
	oldRoot.AddChild(model.New(model.KindMethod, "a", "", ""))
	oldRoot.AddChild(model.New(model.KindMethod, "c", "", ""))
	newRoot.AddChild(model.New(model.KindMethod, "b", "", ""))
	newRoot.AddChild(model.New(model.KindMethod, "c", "", ""))

	r := &recorder{descend: true}
	if err := Walk(context.Background(), oldF, newF, r); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	assertEvents(t, r.events, []string{
		"enter(T,T)",
		"enter(a,-)", "leave(a,-)",
		"enter(-,b)", "leave(-,b)",
		"enter(c,c)", "leave(c,c)",
		"leave(T,T)",
	})
}

func TestCancellationSurfacesAtBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &recorder{descend: true}
	err := Walk(ctx, forestOf("A"), forestOf("A"), r)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(r.events) != 0 {
		t.Fatalf("no element should be entered after cancellation, got %v", r.events)
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	build := func() (*model.Forest, *model.Forest) {
		oldF := forestOf("B", "A", "C")
		newF := forestOf("C", "B", "D")
		return oldF, newF
	}
	var runs [][]string
	for i := 0; i < 2; i++ {
		oldF, newF := build()
		r := &recorder{descend: true}
		if err := Walk(context.Background(), oldF, newF, r); err != nil {
			t.Fatalf("Walk: %v", err)
		}
		runs = append(runs, r.events)
	}
	assertEvents(t, runs[0], runs[1])
}
