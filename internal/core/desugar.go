package core

import (
	"fmt"

	"github.com/curtismckinney/necronomicon/internal/ast"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// Program is the desugared compilation unit: a top-level list-cons chain
// of Binds and DataDecls. Top is nil for an empty program.
type Program struct {
	Top Node
}

// Decls flattens the top-level chain into a slice, for callers (the
// machine IR builder's passes) that want ordinary iteration rather than
// walking cons cells by hand.
func (p *Program) Decls() []Node {
	var out []Node
	for n := p.Top; n != nil; {
		cons, ok := n.(*ListCons)
		if !ok {
			out = append(out, n)
			break
		}
		out = append(out, cons.Head)
		n = cons.Tail
	}
	return out
}

// Desugarer turns a renamed internal/ast.Program into Core. It is a
// stand-in for the external type-inferencer's output: no type inference
// happens here, and type-class declarations/instances are dropped
// rather than elaborated into dictionary-passing, since dictionary
// construction is the inferencer's job, not the desugarer's. Everything
// else in the source language is reduced to Core's smaller variant set
// so the rest of the pipeline (dependency analysis already ran before
// this stage; IR building runs after) has something to consume end to
// end.
//
// Grounded on internal/reify's one-function-per-source-shape dispatch
// style, run a second time against a different source/target pair.
type Desugarer struct {
	Table    *symtable.Table
	Interner *intern.Table
	fresh    int
}

func NewDesugarer(table *symtable.Table, interner *intern.Table) *Desugarer {
	return &Desugarer{Table: table, Interner: interner}
}

// Program desugars every top-level declaration into the Core chain,
// merging an ApatsAssignment's clauses (linked via NextClause) into a
// single Bind the first time its head is seen.
func (d *Desugarer) Program(prog *ast.Program) *Program {
	var nodes []Node
	seen := map[symtable.ID]bool{}
	for _, decl := range prog.Decls {
		switch n := decl.(type) {
		case *ast.DataDecl:
			nodes = append(nodes, d.dataDecl(n))
		case *ast.SimpleAssignment:
			nodes = append(nodes, &Bind{
				Base:  NewBase(n.Pos()),
				Sym:   n.NameSym,
				Def:   n.NameDef,
				Group: n.Group,
				Expr:  d.expr(n.RHS.Expr, n.RHS.Where),
			})
		case *ast.ApatsAssignment:
			if seen[n.NameDef] {
				continue
			}
			seen[n.NameDef] = true
			nodes = append(nodes, d.apatsBind(n))
		case *ast.PatAssignment:
			nodes = append(nodes, d.patBinds(n)...)
		case *ast.TypeSig, *ast.ClassDecl, *ast.InstanceDecl:
			// Type signatures carry no runtime value; class/instance
			// declarations require dictionary elaboration, which belongs
			// to the (external, absent here) type inferencer.
		default:
			panic(fmt.Sprintf("core: Desugarer.Program: unhandled top decl %T", n))
		}
	}

	var top Node
	for i := len(nodes) - 1; i >= 0; i-- {
		top = &ListCons{Base: NewBase(nodes[i].Pos()), Head: nodes[i], Tail: top}
	}
	return &Program{Top: top}
}

// apatsBind folds one function's clauses into a single Bind whose value
// is a chain of single-parameter Lambdas around a Case that matches the
// clauses' patterns against the parameters in order — the standard
// multi-equation-to-case-expression translation.
func (d *Desugarer) apatsBind(head *ast.ApatsAssignment) *Bind {
	var clauses []*ast.ApatsAssignment
	for c := ast.Node(head); c != nil; {
		a := c.(*ast.ApatsAssignment)
		clauses = append(clauses, a)
		c = a.NextClause
	}

	arity := len(head.Apats)
	params := make([]intern.Symbol, arity)
	defs := make([]symtable.ID, arity)
	for i := 0; i < arity; i++ {
		params[i], defs[i] = d.freshVar(fmt.Sprintf("arg%d", i))
	}

	var body Node
	if arity == 0 {
		// Nullary multi-clause binding (pattern guards aside): just take
		// the first clause's body; guard-style overloading on a nullary
		// name is out of scope.
		body = d.expr(head.RHS.Expr, head.RHS.Where)
	} else {
		body = d.clauseDispatch(clauses, params, defs, 0)
	}

	for i := arity - 1; i >= 0; i-- {
		body = &Lambda{Base: NewBase(head.Pos()), ParamSym: params[i], ParamDef: defs[i], Body: body}
	}

	return &Bind{Base: NewBase(head.Pos()), Sym: head.NameSym, Def: head.NameDef, Group: head.Group, Expr: body}
}

// clauseDispatch builds nested Cases that try each clause's pattern at
// parameter argIdx in turn, falling through to the next clause when a
// pattern doesn't match. A clause whose remaining patterns are all plain
// variables/wildcards never needs a Case at all.
func (d *Desugarer) clauseDispatch(clauses []*ast.ApatsAssignment, params []intern.Symbol, defs []symtable.ID, argIdx int) Node {
	if len(clauses) == 0 {
		panic("core: clauseDispatch: no clauses left to try")
	}
	if argIdx >= len(params) {
		// All parameters consumed: the first remaining clause always
		// matches from here.
		return d.bindClauseBody(clauses[0], params, defs)
	}

	clause := clauses[0]
	pat := clause.Apats[argIdx]
	scrutinee := &Var{Base: NewBase(pat.Pos()), Sym: params[argIdx], Ref: defs[argIdx]}

	if isIrrefutable(pat) {
		// A variable/wildcard apat always matches; bind it (if named) and
		// keep going rather than spending a Case on it.
		rest := d.clauseDispatch(clauses, params, defs, argIdx+1)
		if pv, ok := pat.(*ast.PatVar); ok {
			return &Let{
				Base:  NewBase(pat.Pos()),
				Binds: []*Bind{{Base: NewBase(pat.Pos()), Sym: pv.Sym, Def: pv.Def, Expr: scrutinee}},
				Body:  rest,
			}
		}
		return rest
	}

	var fallthroughBody Node
	if len(clauses) > 1 {
		fallthroughBody = d.clauseDispatch(clauses[1:], params, defs, argIdx)
	}
	alt := d.patternAlt(pat, scrutinee, func() Node { return d.clauseDispatch(clauses, params, defs, argIdx+1) })
	alts := []*CaseAlt{alt}
	if fallthroughBody != nil {
		alts = append(alts, &CaseAlt{Base: NewBase(pat.Pos()), IsWildcard: true, Body: fallthroughBody})
	}
	return &Case{Base: NewBase(pat.Pos()), Scrutinee: scrutinee, Alts: alts}
}

func (d *Desugarer) bindClauseBody(clause *ast.ApatsAssignment, params []intern.Symbol, defs []symtable.ID) Node {
	return d.expr(clause.RHS.Expr, clause.RHS.Where)
}

func isIrrefutable(p ast.Node) bool {
	switch p.(type) {
	case *ast.PatVar, *ast.PatWildcard:
		return true
	default:
		return false
	}
}

// patternAlt builds the CaseAlt matching pat against scrutinee, with
// cont producing the body to run once pat's own bindings (and any
// nested sub-pattern matches) succeed.
func (d *Desugarer) patternAlt(pat ast.Node, scrutinee *Var, cont func() Node) *CaseAlt {
	switch p := pat.(type) {
	case *ast.PatCon:
		fieldSyms := make([]intern.Symbol, len(p.SubPats))
		fieldDefs := make([]symtable.ID, len(p.SubPats))
		body := cont()
		for i := len(p.SubPats) - 1; i >= 0; i-- {
			sub := p.SubPats[i]
			sym, def := d.freshVar(fmt.Sprintf("fld%d", i))
			fieldSyms[i], fieldDefs[i] = sym, def
			if isIrrefutable(sub) {
				if pv, ok := sub.(*ast.PatVar); ok {
					fieldSyms[i], fieldDefs[i] = pv.Sym, pv.Def
				}
				continue
			}
			fieldVar := &Var{Base: NewBase(sub.Pos()), Sym: sym, Ref: def}
			inner := body
			body = &Case{
				Base:      NewBase(sub.Pos()),
				Scrutinee: fieldVar,
				Alts:      []*CaseAlt{d.patternAlt(sub, fieldVar, func() Node { return inner })},
			}
		}
		tag := 0
		if rec := d.lookupConTag(p.Ref); rec != nil {
			tag = rec.ConstructorTag
		}
		return &CaseAlt{Base: NewBase(p.Pos()), ConRef: p.Ref, Tag: tag, FieldSyms: fieldSyms, FieldDefs: fieldDefs, Body: body}

	case *ast.PatLiteral:
		// Literal patterns (clause dispatch's fib 0 = ...; fib 1 = ...
		// shape) are matched by equality rather than constructor tag.
		// Tagged as a wildcard alt at the Case level — the machine IR
		// builder is expected to special-case a CaseAlt with a non-nil
		// LitEq rather than read ConRef/Tag — with the comparison itself
		// carried so pass 3 can emit it as a guarded branch.
		return &CaseAlt{Base: NewBase(p.Pos()), IsWildcard: true, LitEq: d.expr(p.Literal, nil), Body: cont()}

	case *ast.PatAs:
		inner := d.patternAlt(p.SubPat, scrutinee, cont)
		return &CaseAlt{
			Base: inner.Base, IsWildcard: inner.IsWildcard, ConRef: inner.ConRef, Tag: inner.Tag,
			FieldSyms: inner.FieldSyms, FieldDefs: inner.FieldDefs, LitEq: inner.LitEq,
			Body: &Let{Base: NewBase(p.Pos()), Binds: []*Bind{{Base: NewBase(p.Pos()), Sym: p.Sym, Def: p.Def, Expr: scrutinee}}, Body: inner.Body},
		}

	case *ast.PatTuple:
		con := &ast.PatCon{Base: p.Base, SubPats: p.Elements}
		return d.patternAlt(con, scrutinee, cont)

	default:
		return &CaseAlt{Base: NewBase(p.Pos()), IsWildcard: true, Body: cont()}
	}
}

func (d *Desugarer) lookupConTag(ref symtable.ID) *symtable.Record {
	if ref == 0 {
		return nil
	}
	return d.Table.Get(ref)
}

// patBinds desugars a pattern binding (`(a, b) = e`) into one Bind per
// variable the pattern names, each re-matching the whole pattern against
// the shared right-hand side. This duplicates evaluation of the RHS per
// bound name; a production desugarer would share it behind a single
// hidden selector binding, but this is a minimal stand-in for the real
// inferencer-driven desugaring.
func (d *Desugarer) patBinds(n *ast.PatAssignment) []Node {
	if pv, ok := n.Pattern.(*ast.PatVar); ok {
		return []Node{&Bind{Base: NewBase(n.Pos()), Sym: pv.Sym, Def: pv.Def, Group: n.Group, Expr: d.expr(n.RHS.Expr, n.RHS.Where)}}
	}

	rhsSym, rhsDef := d.freshVar("patrhs")
	rhsVar := &Var{Sym: rhsSym, Ref: rhsDef}
	rhsBind := &Bind{Sym: rhsSym, Def: rhsDef, Expr: d.expr(n.RHS.Expr, n.RHS.Where)}

	var binds []Node
	ast.Walk(n.Pattern, func(node ast.Node) {
		if pv, ok := node.(*ast.PatVar); ok {
			alt := d.patternAlt(n.Pattern, rhsVar, func() Node { return &Var{Sym: pv.Sym, Ref: pv.Def} })
			binds = append(binds, &Bind{
				Base: NewBase(n.Pos()), Sym: pv.Sym, Def: pv.Def, Group: n.Group,
				Expr: &Let{Binds: []*Bind{rhsBind}, Body: &Case{Base: NewBase(n.Pos()), Scrutinee: rhsVar, Alts: []*CaseAlt{alt}}},
			})
		}
	})
	return binds
}

func (d *Desugarer) dataDecl(n *ast.DataDecl) *DataDecl {
	ctors := make([]*DataCon, len(n.Constructors))
	for i, c := range n.Constructors {
		ctors[i] = &DataCon{Base: NewBase(c.Pos()), Sym: c.NameSym, Def: c.NameDef, Tag: c.Tag, Arity: len(c.Fields)}
	}
	return &DataDecl{Base: NewBase(n.Pos()), Sym: n.NameSym, Def: n.NameDef, Constructors: ctors}
}

// expr desugars one semantic-AST expression into Core. where, when
// non-empty, is a let-bound block scoping expr (an RHS's "where" clause
// desugars exactly like a let).
func (d *Desugarer) expr(n ast.Node, where []ast.Node) Node {
	e := d.exprNode(n)
	if len(where) == 0 {
		return e
	}
	var binds []*Bind
	for _, w := range where {
		for _, b := range d.whereBind(w) {
			binds = append(binds, b)
		}
	}
	return &Let{Base: NewBase(n.Pos()), Binds: binds, Body: e}
}

func (d *Desugarer) whereBind(n ast.Node) []*Bind {
	switch decl := n.(type) {
	case *ast.SimpleAssignment:
		return []*Bind{{Base: NewBase(decl.Pos()), Sym: decl.NameSym, Def: decl.NameDef, Group: decl.Group, Expr: d.expr(decl.RHS.Expr, decl.RHS.Where)}}
	case *ast.ApatsAssignment:
		return []*Bind{d.apatsBind(decl)}
	case *ast.PatAssignment:
		var out []*Bind
		for _, b := range d.patBinds(decl) {
			out = append(out, b.(*Bind))
		}
		return out
	case *ast.TypeSig:
		return nil
	default:
		return nil
	}
}

func (d *Desugarer) exprNode(n ast.Node) Node {
	switch n := n.(type) {
	case *ast.IntLit:
		return &Lit{Base: NewBase(n.Pos()), LitKind: LitInt, Int: n.Value}
	case *ast.FloatLit:
		return &Lit{Base: NewBase(n.Pos()), LitKind: LitFloat, Float: n.Value}
	case *ast.StringLit:
		return &Lit{Base: NewBase(n.Pos()), LitKind: LitString, Str: n.Value}
	case *ast.CharLit:
		return &Lit{Base: NewBase(n.Pos()), LitKind: LitChar, Char: n.Value}

	case *ast.VarRef:
		return &Var{Base: NewBase(n.Pos()), Sym: n.Sym, Ref: n.Ref}
	case *ast.ConRef:
		return &Var{Base: NewBase(n.Pos()), Sym: n.Sym, Ref: n.Ref, IsCon: true}

	case *ast.App:
		return &App{Base: NewBase(n.Pos()), Fn: d.exprNode(n.Fn), Arg: d.exprNode(n.Arg)}

	case *ast.Lambda:
		body := d.exprNode(n.Body)
		for i := len(n.Params) - 1; i >= 0; i-- {
			body = d.wrapParam(n.Params[i], body)
		}
		return body

	case *ast.Let:
		var binds []*Bind
		for _, decl := range n.Decls {
			for _, b := range d.whereBind(decl) {
				binds = append(binds, b)
			}
		}
		return &Let{Base: NewBase(n.Pos()), Binds: binds, Body: d.exprNode(n.Body)}

	case *ast.If:
		// case cond of { True -> then; False -> else }. True/False are not
		// spelled out in the prim installer's fixed roster but are assumed
		// to be installed as an ordinary two-constructor sum type (tags
		// 1/0) alongside Maybe; the else-branch is emitted as a wildcard
		// alt rather than an explicit False tag since a two-constructor
		// Case never needs both spelled out.
		cond, synth := d.asVar(d.exprNode(n.Cond))
		alts := []*CaseAlt{
			{Base: NewBase(n.Then.Pos()), Tag: 1, Body: d.exprNode(n.Then)},
			{Base: NewBase(n.Else.Pos()), IsWildcard: true, Body: d.exprNode(n.Else)},
		}
		result := Node(&Case{Base: NewBase(n.Pos()), Scrutinee: cond, Alts: alts})
		if synth != nil {
			return &Let{Base: NewBase(n.Pos()), Binds: []*Bind{synth}, Body: result}
		}
		return result

	case *ast.Case:
		alts := make([]*CaseAlt, len(n.Alts))
		scrutineeVar, synth := d.asVar(d.exprNode(n.Scrutinee))
		for i, a := range n.Alts {
			body := d.rhs(a.RHS)
			alts[i] = d.patternAlt(a.Pattern, scrutineeVar, func() Node { return body })
		}
		result := Node(&Case{Base: NewBase(n.Pos()), Scrutinee: scrutineeVar, Alts: alts})
		if synth != nil {
			return &Let{Base: NewBase(n.Pos()), Binds: []*Bind{synth}, Body: result}
		}
		return result

	case *ast.Do:
		return d.doBlock(n.Stmts)

	case *ast.ListExpr:
		return d.consChain(n.Elements)
	case *ast.ArrayExpr:
		list := d.consChain(n.Elements)
		return &App{Base: NewBase(n.Pos()), Fn: &Var{Base: NewBase(n.Pos()), Sym: d.Interner.Intern("Array")}, Arg: list}
	case *ast.TupleExpr:
		tupSym := d.Interner.Intern(tupleConName(len(n.Elements)))
		var app Node = &Var{Base: NewBase(n.Pos()), Sym: tupSym, IsCon: true}
		for _, el := range n.Elements {
			app = &App{Base: NewBase(n.Pos()), Fn: app, Arg: d.exprNode(el)}
		}
		return app

	case *ast.ArithSeq:
		fn := "enumFrom"
		args := []ast.Node{n.From}
		switch n.SeqKind {
		case ast.ArithFromTo:
			fn = "enumFromTo"
			args = append(args, n.To)
		case ast.ArithFromThenTo:
			fn = "enumFromThenTo"
			args = []ast.Node{n.From, n.Then, n.To}
		}
		var app Node = &Var{Base: NewBase(n.Pos()), Sym: d.Interner.Intern(fn)}
		for _, a := range args {
			app = &App{Base: NewBase(n.Pos()), Fn: app, Arg: d.exprNode(a)}
		}
		return app

	case *ast.LeftSection:
		ySym, yDef := d.freshVar("sec")
		return &Lambda{Base: NewBase(n.Pos()), ParamSym: ySym, ParamDef: yDef, Body: &App{
			Base: NewBase(n.Pos()),
			Fn:   &App{Base: NewBase(n.Pos()), Fn: &Var{Base: NewBase(n.Pos()), Sym: n.Op, Ref: n.OpRef}, Arg: d.exprNode(n.Expr)},
			Arg:  &Var{Base: NewBase(n.Pos()), Sym: ySym, Ref: yDef},
		}}
	case *ast.RightSection:
		ySym, yDef := d.freshVar("sec")
		return &Lambda{Base: NewBase(n.Pos()), ParamSym: ySym, ParamDef: yDef, Body: &App{
			Base: NewBase(n.Pos()),
			Fn:   &App{Base: NewBase(n.Pos()), Fn: &Var{Base: NewBase(n.Pos()), Sym: n.Op, Ref: n.OpRef}, Arg: &Var{Base: NewBase(n.Pos()), Sym: ySym, Ref: yDef}},
			Arg:  d.exprNode(n.Expr),
		}}

	case *ast.BinOp:
		return &App{Base: NewBase(n.Pos()), Fn: &App{
			Base: NewBase(n.Pos()),
			Fn:   &Var{Base: NewBase(n.Pos()), Sym: n.Op, Ref: n.OpRef},
			Arg:  d.exprNode(n.Left),
		}, Arg: d.exprNode(n.Right)}
	case *ast.UnOp:
		return &App{Base: NewBase(n.Pos()), Fn: &Var{Base: NewBase(n.Pos()), Sym: n.Op, Ref: n.OpRef}, Arg: d.exprNode(n.Right)}

	default:
		panic(fmt.Sprintf("core: Desugarer.exprNode: unhandled expr %T", n))
	}
}

func (d *Desugarer) rhs(r *ast.RHS) Node { return d.expr(r.Expr, r.Where) }

// asVar ensures a scrutinee is a bare Var (so Case's dispatch logic and
// nested pattern alts can always reference it without re-evaluating a
// compound expression); if it isn't already, it is let-bound once.
func (d *Desugarer) asVar(n Node) (*Var, *Bind) {
	if v, ok := n.(*Var); ok {
		return v, nil
	}
	sym, def := d.freshVar("scrut")
	return &Var{Sym: sym, Ref: def}, &Bind{Sym: sym, Def: def, Expr: n}
}

func (d *Desugarer) wrapParam(p ast.Node, body Node) Node {
	if pv, ok := p.(*ast.PatVar); ok {
		return &Lambda{Base: NewBase(p.Pos()), ParamSym: pv.Sym, ParamDef: pv.Def, Body: body}
	}
	sym, def := d.freshVar("arg")
	scrutinee := &Var{Sym: sym, Ref: def}
	alt := d.patternAlt(p, scrutinee, func() Node { return body })
	return &Lambda{Base: NewBase(p.Pos()), ParamSym: sym, ParamDef: def, Body: &Case{Scrutinee: scrutinee, Alts: []*CaseAlt{alt}}}
}

func (d *Desugarer) doBlock(stmts []ast.Node) Node {
	if len(stmts) == 0 {
		panic("core: doBlock: empty do-block")
	}
	if len(stmts) == 1 {
		if es, ok := stmts[0].(*ast.DoExprStmt); ok {
			return d.exprNode(es.Expr)
		}
		panic("core: doBlock: trailing statement must be an expression")
	}

	head, rest := stmts[0], stmts[1:]
	switch s := head.(type) {
	case *ast.DoBind:
		k := d.doBlock(rest)
		bound := d.wrapParam(s.Pattern, k)
		return &App{Fn: &App{Fn: &Var{Sym: d.Interner.Intern("bind")}, Arg: d.exprNode(s.Expr)}, Arg: bound}
	case *ast.DoExprStmt:
		k := d.doBlock(rest)
		return &App{Fn: &App{Fn: &Var{Sym: d.Interner.Intern("then")}, Arg: d.exprNode(s.Expr)}, Arg: &Lambda{
			ParamSym: d.Interner.Intern("_"), Body: k,
		}}
	default:
		panic(fmt.Sprintf("core: doBlock: unhandled do-statement %T", head))
	}
}

// consChain desugars a source list/array literal into nested applications
// of the `:`/`[]` constructors — not the Core ListCons variant, which is
// reserved for top-level declaration chains only.
func (d *Desugarer) consChain(elements []ast.Node) Node {
	consSym := d.Interner.Intern(":")
	var tail Node = &Var{Sym: d.Interner.Intern("[]"), IsCon: true}
	for i := len(elements) - 1; i >= 0; i-- {
		tail = &App{Fn: &App{Fn: &Var{Sym: consSym, IsCon: true}, Arg: d.exprNode(elements[i])}, Arg: tail}
	}
	return tail
}

func tupleConName(arity int) string {
	out := "("
	for i := 1; i < arity; i++ {
		out += ","
	}
	return out + ")"
}

func (d *Desugarer) freshVar(base string) (intern.Symbol, symtable.ID) {
	d.fresh++
	sym := d.Interner.Intern(fmt.Sprintf("$%s%d", base, d.fresh))
	id := d.Table.Insert(symtable.Record{Name: sym, Arity: -1, Namespace: symtable.TermNamespace})
	return sym, id
}
