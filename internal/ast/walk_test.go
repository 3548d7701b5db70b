package ast

import (
	"testing"

	"github.com/curtismckinney/necronomicon/internal/intern"
)

var symA = intern.Symbol{ID: 1}

// countingVisit returns a visitor that counts how many times it fires,
// and the slice of Kinds seen in visitation order.
func countingVisit() (func(Node), *[]Kind) {
	var seen []Kind
	return func(n Node) { seen = append(seen, n.Kind()) }, &seen
}

func TestWalk_NilNodeIsNoOp(t *testing.T) {
	visit, seen := countingVisit()
	Walk(nil, visit)
	if len(*seen) != 0 {
		t.Fatalf("want zero visits on a nil node, got %d", len(*seen))
	}
}

func TestWalk_LeafVisitsOnlyItself(t *testing.T) {
	visit, seen := countingVisit()
	Walk(&IntLit{Value: 1}, visit)
	if len(*seen) != 1 || (*seen)[0] != KindIntLit {
		t.Fatalf("want a single IntLit visit, got %v", *seen)
	}
}

func TestWalk_AppVisitsFnThenArg(t *testing.T) {
	app := &App{Fn: &VarRef{Sym: symA}, Arg: &IntLit{Value: 2}}
	visit, seen := countingVisit()
	Walk(app, visit)
	want := []Kind{KindApp, KindVarRef, KindIntLit}
	if !kindsEqual(*seen, want) {
		t.Fatalf("got %v, want %v", *seen, want)
	}
}

func TestWalk_IfVisitsCondThenElseInOrder(t *testing.T) {
	n := &If{
		Cond: &VarRef{Sym: symA},
		Then: &IntLit{Value: 1},
		Else: &IntLit{Value: 2},
	}
	visit, seen := countingVisit()
	Walk(n, visit)
	want := []Kind{KindIf, KindVarRef, KindIntLit, KindIntLit}
	if !kindsEqual(*seen, want) {
		t.Fatalf("got %v, want %v", *seen, want)
	}
}

func TestWalk_CaseVisitsScrutineeThenEachAlt(t *testing.T) {
	n := &Case{
		Scrutinee: &VarRef{Sym: symA},
		Alts: []*CaseAlt{
			{Pattern: &PatWildcard{}, RHS: &RHS{Expr: &IntLit{Value: 1}}},
		},
	}
	visit, seen := countingVisit()
	Walk(n, visit)
	want := []Kind{KindCase, KindVarRef, KindCaseAlt, KindPatWildcard, KindRHS, KindIntLit}
	if !kindsEqual(*seen, want) {
		t.Fatalf("got %v, want %v", *seen, want)
	}
}

func TestWalk_SimpleAssignmentDescendsIntoRHSOnly(t *testing.T) {
	n := &SimpleAssignment{RHS: &RHS{Expr: &IntLit{Value: 1}}}
	visit, seen := countingVisit()
	Walk(n, visit)
	want := []Kind{KindSimpleAssignment, KindRHS, KindIntLit}
	if !kindsEqual(*seen, want) {
		t.Fatalf("got %v, want %v", *seen, want)
	}
}

func TestWalk_ApatsAssignmentFollowsNextClauseChain(t *testing.T) {
	second := &ApatsAssignment{RHS: &RHS{Expr: &IntLit{Value: 0}}}
	first := &ApatsAssignment{
		Apats:      []Node{&PatVar{Sym: symA}},
		RHS:        &RHS{Expr: &IntLit{Value: 1}},
		NextClause: second,
	}
	visit, seen := countingVisit()
	Walk(first, visit)
	want := []Kind{
		KindApatsAssignment, KindPatVar, KindRHS, KindIntLit,
		KindApatsAssignment, KindRHS, KindIntLit,
	}
	if !kindsEqual(*seen, want) {
		t.Fatalf("got %v, want %v", *seen, want)
	}
}

func TestWalk_RHSVisitsWhereBeforeExpr(t *testing.T) {
	n := &RHS{
		Where: []Node{&SimpleAssignment{RHS: &RHS{Expr: &IntLit{Value: 9}}}},
		Expr:  &VarRef{Sym: symA},
	}
	visit, seen := countingVisit()
	Walk(n, visit)
	want := []Kind{KindRHS, KindSimpleAssignment, KindRHS, KindIntLit, KindVarRef}
	if !kindsEqual(*seen, want) {
		t.Fatalf("got %v, want %v", *seen, want)
	}
}

func TestWalkProgram_VisitsEveryTopLevelDecl(t *testing.T) {
	prog := &Program{Decls: []Node{
		&SimpleAssignment{RHS: &RHS{Expr: &IntLit{Value: 1}}},
		&SimpleAssignment{RHS: &RHS{Expr: &IntLit{Value: 2}}},
	}}
	visit, seen := countingVisit()
	WalkProgram(prog, visit)
	if len(*seen) != 6 { // 2x (SimpleAssignment, RHS, IntLit)
		t.Fatalf("want 6 visits across both decls, got %d", len(*seen))
	}
}

func TestWalk_UnhandledNodeTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("want Walk to panic on an unrecognized Node implementation")
		}
	}()
	Walk(&bogusNode{}, func(Node) {})
}

// bogusNode satisfies Node but has no case in Walk's switch, exercising
// the default branch.
type bogusNode struct{ Base }

func (*bogusNode) Kind() Kind { return Kind(255) }

func kindsEqual(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
