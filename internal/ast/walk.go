package ast

// Walk calls fn on n and recursively on every child node, in the order
// children are evaluated. nil nodes (absent optional children) are
// skipped. This is a plain bottom-agnostic visitor — callers that need
// scope-aware traversal (the renamer) do not use this, since entering and
// leaving lexical scopes has to happen at specific points Walk has no way
// to signal; Walk exists for scope-insensitive consumers like the
// dependency analyzer's "which symbols does this declaration's body
// mention" query.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch n := n.(type) {
	case *IntLit, *FloatLit, *StringLit, *CharLit, *VarRef, *ConRef,
		*PatWildcard, *SimpleType, *TypeVar:
		// leaves

	case *App:
		Walk(n.Fn, fn)
		Walk(n.Arg, fn)

	case *Lambda:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		Walk(n.Body, fn)

	case *Let:
		for _, d := range n.Decls {
			Walk(d, fn)
		}
		Walk(n.Body, fn)

	case *If:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)

	case *Case:
		Walk(n.Scrutinee, fn)
		for _, a := range n.Alts {
			Walk(a, fn)
		}

	case *CaseAlt:
		Walk(n.Pattern, fn)
		Walk(n.RHS, fn)

	case *Do:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}

	case *DoBind:
		Walk(n.Pattern, fn)
		Walk(n.Expr, fn)

	case *DoExprStmt:
		Walk(n.Expr, fn)

	case *ListExpr:
		for _, e := range n.Elements {
			Walk(e, fn)
		}
	case *ArrayExpr:
		for _, e := range n.Elements {
			Walk(e, fn)
		}
	case *TupleExpr:
		for _, e := range n.Elements {
			Walk(e, fn)
		}

	case *ArithSeq:
		Walk(n.From, fn)
		Walk(n.To, fn)
		Walk(n.Then, fn)

	case *LeftSection:
		Walk(n.Expr, fn)
	case *RightSection:
		Walk(n.Expr, fn)

	case *BinOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *UnOp:
		Walk(n.Right, fn)

	case *PatLiteral:
		Walk(n.Literal, fn)
	case *PatCon:
		for _, p := range n.SubPats {
			Walk(p, fn)
		}
	case *PatTuple:
		for _, p := range n.Elements {
			Walk(p, fn)
		}
	case *PatAs:
		Walk(n.SubPat, fn)

	case *SimpleAssignment:
		Walk(n.RHS, fn)
	case *ApatsAssignment:
		for _, p := range n.Apats {
			Walk(p, fn)
		}
		Walk(n.RHS, fn)
		Walk(n.NextClause, fn)
	case *PatAssignment:
		Walk(n.Pattern, fn)
		Walk(n.RHS, fn)
		Walk(n.NextClause, fn)
	case *RHS:
		for _, d := range n.Where {
			Walk(d, fn)
		}
		Walk(n.Expr, fn)
	case *TypeSig:
		for _, c := range n.Context {
			Walk(c, fn)
		}
		Walk(n.Type, fn)
	case *DataDecl:
		for _, v := range n.TypeVars {
			Walk(v, fn)
		}
		for _, c := range n.Constructors {
			Walk(c, fn)
		}
	case *ConstructorDecl:
		for _, f := range n.Fields {
			Walk(f, fn)
		}
	case *ClassDecl:
		for _, v := range n.TypeVars {
			Walk(v, fn)
		}
		for _, m := range n.Methods {
			Walk(m, fn)
		}
	case *InstanceDecl:
		for _, c := range n.Context {
			Walk(c, fn)
		}
		Walk(n.Type, fn)
		for _, m := range n.Methods {
			Walk(m, fn)
		}
	case *ClassContext:
		// leaf: ClassSym/TypeVar are plain symbols, not child nodes.

	case *TypeApp:
		Walk(n.Fn, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *FunType:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		Walk(n.Return, fn)

	default:
		panic("ast: Walk: unhandled node type")
	}
}

// WalkProgram walks every top-level declaration.
func WalkProgram(prog *Program, fn func(Node)) {
	for _, d := range prog.Decls {
		Walk(d, fn)
	}
}
