package core

import (
	"testing"

	"github.com/curtismckinney/necronomicon/internal/ast"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

func newDesugarer() (*Desugarer, *intern.Table, *symtable.Table) {
	in := intern.New()
	tbl := symtable.New()
	return NewDesugarer(tbl, in), in, tbl
}

// TestProgram_XEquals1 covers a single SimpleAssignment: it desugars to
// one Bind holding its literal expression, wrapped in a one-element
// ListCons chain.
func TestProgram_XEquals1(t *testing.T) {
	d, in, tbl := newDesugarer()
	xSym := in.Intern("x")
	xID := tbl.Insert(symtable.Record{Name: xSym})
	decl := &ast.SimpleAssignment{NameSym: xSym, NameDef: xID, RHS: &ast.RHS{Expr: &ast.IntLit{Value: 1}}}

	prog := d.Program(&ast.Program{Decls: []ast.Node{decl}})
	decls := prog.Decls()

	if len(decls) != 1 {
		t.Fatalf("want exactly one Core top-level node, got %d", len(decls))
	}
	bind, ok := decls[0].(*Bind)
	if !ok {
		t.Fatalf("want *Bind, got %T", decls[0])
	}
	if bind.Def != xID {
		t.Fatalf("want the Bind to carry x's symbol id forward")
	}
	lit, ok := bind.Expr.(*Lit)
	if !ok || lit.LitKind != LitInt || lit.Int != 1 {
		t.Fatalf("want the bind's expr to be Lit{Int: 1}, got %#v", bind.Expr)
	}
}

// TestExprNode_IfThenElseBecomesTwoAltCase covers the rule that
// if/then/else desugars into a two-alternative Case: the then-branch is
// tagged 1, the else-branch is the wildcard fallback.
func TestExprNode_IfThenElseBecomesTwoAltCase(t *testing.T) {
	d, _, _ := newDesugarer()
	n := &ast.If{
		Cond: &ast.VarRef{},
		Then: &ast.IntLit{Value: 1},
		Else: &ast.IntLit{Value: 2},
	}

	got := d.exprNode(n)

	cs, ok := got.(*Case)
	if !ok {
		t.Fatalf("want *Case, got %T", got)
	}
	if len(cs.Alts) != 2 {
		t.Fatalf("want exactly two alternatives, got %d", len(cs.Alts))
	}
	if cs.Alts[0].Tag != 1 || cs.Alts[0].IsWildcard {
		t.Fatalf("want the then-alt tagged 1 and not a wildcard, got %#v", cs.Alts[0])
	}
	if !cs.Alts[1].IsWildcard {
		t.Fatalf("want the else-alt to be the wildcard fallback")
	}
}

// TestApatsBind_MultiClauseFunctionDispatchesOnFirstParam exercises the
// multi-equation-to-Case translation for a two-clause function (the
// "fib 0 = ...; fib n = ..." shape): clauseDispatch should emit exactly
// one Case on the first (only) parameter, with the literal-0 clause
// first and a wildcard fallthrough to the variable clause.
func TestApatsBind_MultiClauseFunctionDispatchesOnFirstParam(t *testing.T) {
	d, in, tbl := newDesugarer()
	fSym := in.Intern("f")
	nSym := in.Intern("n")
	nID := tbl.Insert(symtable.Record{Name: nSym})

	zeroClause := &ast.ApatsAssignment{
		NameSym: fSym,
		Apats:   []ast.Node{&ast.PatLiteral{Literal: &ast.IntLit{Value: 0}}},
		RHS:     &ast.RHS{Expr: &ast.IntLit{Value: 100}},
	}
	varClause := &ast.ApatsAssignment{
		NameSym: fSym,
		Apats:   []ast.Node{&ast.PatVar{Sym: nSym, Def: nID}},
		RHS:     &ast.RHS{Expr: &ast.VarRef{Sym: nSym, Ref: nID}},
	}
	zeroClause.NextClause = varClause

	bind := d.apatsBind(zeroClause)

	lambda, ok := bind.Expr.(*Lambda)
	if !ok {
		t.Fatalf("want a one-parameter Lambda wrapping the dispatch, got %T", bind.Expr)
	}
	cs, ok := lambda.Body.(*Case)
	if !ok {
		t.Fatalf("want the lambda body to be a dispatch Case, got %T", lambda.Body)
	}
	if len(cs.Alts) != 2 {
		t.Fatalf("want 2 alternatives (literal-0 alt + wildcard fallthrough), got %d", len(cs.Alts))
	}
	if cs.Alts[0].LitEq == nil {
		t.Fatalf("want the first alt to carry a literal-equality guard for pattern 0")
	}
	if !cs.Alts[1].IsWildcard {
		t.Fatalf("want the second alt to be the wildcard fallthrough to the variable clause")
	}
}

// TestExprNode_ListLiteralBecomesConsChain covers the rule that source
// list literals desugar into nested `:`/`[]` constructor applications,
// never into the Core ListCons variant (which is reserved for top-level
// decls).
func TestExprNode_ListLiteralBecomesConsChain(t *testing.T) {
	d, _, _ := newDesugarer()
	n := &ast.ListExpr{Elements: []ast.Node{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}}}

	got := d.exprNode(n)

	outer, ok := got.(*App)
	if !ok {
		t.Fatalf("want *App (cons application), got %T", got)
	}
	consFn, ok := outer.Fn.(*App)
	if !ok {
		t.Fatalf("want outer.Fn to itself be an App(cons, head), got %T", outer.Fn)
	}
	head, ok := consFn.Arg.(*Lit)
	if !ok || head.Int != 1 {
		t.Fatalf("want the first cons cell's head to be Lit(1), got %#v", consFn.Arg)
	}
	tail, ok := outer.Arg.(*App)
	if !ok {
		t.Fatalf("want the tail to be another cons application, got %T", outer.Arg)
	}
	nilTerm, ok := tail.Arg.(*Var)
	if !ok || !nilTerm.IsCon {
		t.Fatalf("want the final tail to terminate the chain with the [] constructor, got %#v", tail.Arg)
	}
}

// TestDesugarWhere_BindingsVisibleInBody confirms an RHS `where` block
// desugars into a Let wrapping the body expression.
func TestDesugarWhere_BindingsVisibleInBody(t *testing.T) {
	d, in, tbl := newDesugarer()
	ySym := in.Intern("y")
	yID := tbl.Insert(symtable.Record{Name: ySym})
	where := []ast.Node{&ast.SimpleAssignment{NameSym: ySym, NameDef: yID, RHS: &ast.RHS{Expr: &ast.IntLit{Value: 1}}}}

	got := d.expr(&ast.VarRef{Sym: ySym, Ref: yID}, where)

	let, ok := got.(*Let)
	if !ok {
		t.Fatalf("want *Let wrapping the where-block, got %T", got)
	}
	if len(let.Binds) != 1 || let.Binds[0].Def != yID {
		t.Fatalf("want one Bind carrying y's symbol id, got %#v", let.Binds)
	}
}
