package ast

var kindNames = [...]string{
	KindIntLit:    "IntLit",
	KindFloatLit:  "FloatLit",
	KindStringLit: "StringLit",
	KindCharLit:   "CharLit",

	KindVarRef: "VarRef",
	KindConRef: "ConRef",

	KindApp:        "App",
	KindLambda:     "Lambda",
	KindLet:        "Let",
	KindIf:         "If",
	KindCase:       "Case",
	KindCaseAlt:    "CaseAlt",
	KindDo:         "Do",
	KindDoBind:     "DoBind",
	KindDoExprStmt: "DoExprStmt",

	KindListExpr:     "ListExpr",
	KindArrayExpr:    "ArrayExpr",
	KindTupleExpr:    "TupleExpr",
	KindArithSeq:     "ArithSeq",
	KindLeftSection:  "LeftSection",
	KindRightSection: "RightSection",

	KindBinOp: "BinOp",
	KindUnOp:  "UnOp",

	KindPatVar:      "PatVar",
	KindPatWildcard: "PatWildcard",
	KindPatLiteral:  "PatLiteral",
	KindPatCon:      "PatCon",
	KindPatTuple:    "PatTuple",
	KindPatAs:       "PatAs",

	KindSimpleAssignment: "SimpleAssignment",
	KindApatsAssignment:  "ApatsAssignment",
	KindPatAssignment:    "PatAssignment",
	KindRHS:              "RHS",
	KindTypeSig:          "TypeSig",
	KindDataDecl:         "DataDecl",
	KindConstructorDecl:  "ConstructorDecl",
	KindClassDecl:        "ClassDecl",
	KindInstanceDecl:     "InstanceDecl",
	KindClassContext:     "ClassContext",

	KindTypeApp:    "TypeApp",
	KindFunType:    "FunType",
	KindSimpleType: "SimpleType",
	KindTypeVar:    "TypeVar",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}
