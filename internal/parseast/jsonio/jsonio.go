// Package jsonio serializes and deserializes a parseast.Arena as JSON.
// Since the lexer and parser are external collaborators whose output
// this pipeline only consumes, the CLI (cmd/necro) accepts a
// parse AST arena as a JSON document on disk rather than producing one
// from source text itself. Decode uses tidwall/gjson to read fields out
// of the document without a full encoding/json unmarshal pass; Encode
// renders via encoding/json and then tidwall/pretty for a stable,
// readable byte form; Patch uses tidwall/sjson to update a single field
// in place without re-encoding the whole document.
package jsonio

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/curtismckinney/necronomicon/internal/diag"
	"github.com/curtismckinney/necronomicon/internal/parseast"
)

// Encode renders arena as pretty-printed JSON.
func Encode(arena *parseast.Arena) ([]byte, error) {
	doc := struct {
		Root  parseast.Ref `json:"root"`
		Nodes []wireNode   `json:"nodes"`
	}{Root: arena.Root}

	doc.Nodes = make([]wireNode, len(arena.Nodes))
	for i, n := range arena.Nodes {
		if i == 0 {
			continue // sentinel
		}
		doc.Nodes[i] = toWire(n)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("jsonio: encode: %w", err)
	}
	return pretty.Pretty(raw), nil
}

// Decode parses data into a fresh Arena. Node-field extraction is done
// with gjson path queries rather than json.Unmarshal into parseast.Node
// directly, since Node's JSON shape (tag as a name string, enum fields as
// names) doesn't match its in-memory numeric representation.
func Decode(data []byte) (*parseast.Arena, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("jsonio: invalid JSON")
	}
	root := gjson.GetBytes(data, "root")
	nodes := gjson.GetBytes(data, "nodes")
	if !nodes.IsArray() {
		return nil, fmt.Errorf("jsonio: missing nodes array")
	}

	arena := parseast.NewArena()
	results := nodes.Array()
	// results[0] is the JSON-side sentinel (null); pre-size then fill.
	for i := 1; i < len(results); i++ {
		arena.Nodes = append(arena.Nodes, parseast.Node{})
	}
	for i, r := range results {
		if i == 0 || !r.Exists() || r.Type == gjson.Null {
			continue
		}
		n, err := fromWireResult(r)
		if err != nil {
			return nil, fmt.Errorf("jsonio: node %d: %w", i, err)
		}
		arena.Nodes[i] = n
	}
	arena.Root = parseast.Ref(root.Int())
	return arena, nil
}

// Patch sets a single dotted-path field (e.g. "nodes.3.intVal") in a
// previously encoded document and returns the updated bytes.
func Patch(data []byte, path string, value any) ([]byte, error) {
	out, err := sjson.SetBytes(data, path, value)
	if err != nil {
		return nil, fmt.Errorf("jsonio: patch %s: %w", path, err)
	}
	return out, nil
}

// wireNode is the on-the-wire shape: enums render as their names so the
// JSON is human-diffable (an encoded document is meant to be read, not
// just round-tripped).
type wireNode struct {
	Tag       string `json:"tag"`
	Line      int    `json:"line,omitempty"`
	Column    int    `json:"column,omitempty"`
	Offset    int    `json:"offset,omitempty"`
	Item      int32  `json:"item,omitempty"`
	Next      int32  `json:"next,omitempty"`
	Left      int32  `json:"left,omitempty"`
	Right     int32  `json:"right,omitempty"`
	Cond      int32  `json:"cond,omitempty"`
	Then      int32  `json:"then,omitempty"`
	Else      int32  `json:"else,omitempty"`
	Name      int32  `json:"name,omitempty"`
	Apats     int32  `json:"apats,omitempty"`
	RHS       int32  `json:"rhs,omitempty"`
	Where     int32  `json:"where,omitempty"`
	Body      int32  `json:"body,omitempty"`
	Decls     int32  `json:"decls,omitempty"`
	Scrutinee int32  `json:"scrutinee,omitempty"`
	Alts      int32  `json:"alts,omitempty"`
	Pattern   int32  `json:"pattern,omitempty"`
	Elements  int32  `json:"elements,omitempty"`
	From      int32  `json:"from,omitempty"`
	To        int32  `json:"to,omitempty"`
	ThenSeq   int32  `json:"thenSeq,omitempty"`
	TypeExpr  int32  `json:"typeExpr,omitempty"`
	Context   int32  `json:"context,omitempty"`
	Methods   int32  `json:"methods,omitempty"`
	Ctors     int32  `json:"ctors,omitempty"`
	TyVars    int32  `json:"tyVars,omitempty"`
	Fields    int32  `json:"fields,omitempty"`
	Params    int32  `json:"params,omitempty"`
	Stmts     int32  `json:"stmts,omitempty"`

	Ident     string `json:"ident,omitempty"`
	OpType    string `json:"opType,omitempty"`
	VarType   string `json:"varType,omitempty"`
	ConKind   string `json:"conKind,omitempty"`
	ConstKind string `json:"constKind,omitempty"`
	ArithKind string `json:"arithKind,omitempty"`
	IsPattern bool   `json:"isPattern,omitempty"`

	IntVal   int64   `json:"intVal,omitempty"`
	FloatVal float64 `json:"floatVal,omitempty"`
	StrVal   string  `json:"strVal,omitempty"`
}

var opTypeNames = map[parseast.OpType]string{
	parseast.OpNone: "none", parseast.OpAdd: "add", parseast.OpSub: "sub",
	parseast.OpMul: "mul", parseast.OpDiv: "div", parseast.OpEq: "eq",
	parseast.OpNeq: "neq", parseast.OpLt: "lt", parseast.OpGt: "gt",
	parseast.OpLte: "lte", parseast.OpGte: "gte",
	parseast.OpRightBind: "rightBind", parseast.OpAppend: "append", parseast.OpUser: "user",
}
var opTypeByName = invert(opTypeNames)

var varTypeNames = map[parseast.VarType]string{
	parseast.VarUse: "use", parseast.VarDeclaration: "declaration", parseast.VarSig: "sig",
	parseast.VarClassSig: "classSig", parseast.VarTypeVarDecl: "typeVarDecl", parseast.VarTypeFreeVar: "typeFreeVar",
}
var varTypeByName = invert(varTypeNames)

var conKindNames = map[parseast.ConKind]string{parseast.ConTerm: "term", parseast.ConTypeCtor: "type"}
var conKindByName = invert(conKindNames)

var constKindNames = map[parseast.ConstKind]string{
	parseast.ConstInt: "int", parseast.ConstFloat: "float", parseast.ConstString: "string", parseast.ConstChar: "char",
}
var constKindByName = invert(constKindNames)

var arithKindNames = map[parseast.ArithSeqKind]string{
	parseast.ArithFrom: "from", parseast.ArithFromTo: "fromTo", parseast.ArithFromThenTo: "fromThenTo",
}
var arithKindByName = invert(arithKindNames)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func toWire(n parseast.Node) wireNode {
	return wireNode{
		Tag: n.Tag.String(),
		Line: n.Pos.Line, Column: n.Pos.Column, Offset: n.Pos.Offset,
		Item: int32(n.Item), Next: int32(n.Next),
		Left: int32(n.Left), Right: int32(n.Right),
		Cond: int32(n.Cond), Then: int32(n.Then), Else: int32(n.Else),
		Name: int32(n.Name), Apats: int32(n.Apats), RHS: int32(n.RHS),
		Where: int32(n.Where), Body: int32(n.Body), Decls: int32(n.Decls),
		Scrutinee: int32(n.Scrutinee), Alts: int32(n.Alts), Pattern: int32(n.Pattern),
		Elements: int32(n.Elements), From: int32(n.From), To: int32(n.To), ThenSeq: int32(n.Then_),
		TypeExpr: int32(n.TypeExpr), Context: int32(n.Context), Methods: int32(n.Methods),
		Ctors: int32(n.Ctors), TyVars: int32(n.TyVars), Fields: int32(n.Fields),
		Params: int32(n.Params), Stmts: int32(n.Stmts),
		Ident: n.Ident, OpType: opTypeNames[n.OpType], VarType: varTypeNames[n.VarType],
		ConKind: conKindNames[n.ConKind], ConstKind: constKindNames[n.ConstKind],
		ArithKind: arithKindNames[n.ArithKind], IsPattern: n.IsPattern,
		IntVal: n.IntVal, FloatVal: n.FloatVal, StrVal: n.StrVal,
	}
}

func fromWireResult(r gjson.Result) (parseast.Node, error) {
	tagName := r.Get("tag").String()
	tag, ok := tagByName(tagName)
	if !ok {
		return parseast.Node{}, fmt.Errorf("unknown tag %q", tagName)
	}
	ref := func(field string) parseast.Ref { return parseast.Ref(r.Get(field).Int()) }
	return parseast.Node{
		Tag: tag,
		Pos: diag.Position{Line: int(r.Get("line").Int()), Column: int(r.Get("column").Int()), Offset: int(r.Get("offset").Int())},
		Item: ref("item"), Next: ref("next"), Left: ref("left"), Right: ref("right"),
		Cond: ref("cond"), Then: ref("then"), Else: ref("else"),
		Name: ref("name"), Apats: ref("apats"), RHS: ref("rhs"), Where: ref("where"),
		Body: ref("body"), Decls: ref("decls"), Scrutinee: ref("scrutinee"), Alts: ref("alts"),
		Pattern: ref("pattern"), Elements: ref("elements"), From: ref("from"), To: ref("to"), Then_: ref("thenSeq"),
		TypeExpr: ref("typeExpr"), Context: ref("context"), Methods: ref("methods"),
		Ctors: ref("ctors"), TyVars: ref("tyVars"), Fields: ref("fields"), Params: ref("params"), Stmts: ref("stmts"),
		Ident: r.Get("ident").String(), OpType: opTypeByName[r.Get("opType").String()],
		VarType: varTypeByName[r.Get("varType").String()], ConKind: conKindByName[r.Get("conKind").String()],
		ConstKind: constKindByName[r.Get("constKind").String()], ArithKind: arithKindByName[r.Get("arithKind").String()],
		IsPattern: r.Get("isPattern").Bool(),
		IntVal: r.Get("intVal").Int(), FloatVal: r.Get("floatVal").Float(), StrVal: r.Get("strVal").String(),
	}, nil
}

func tagByName(name string) (parseast.Tag, bool) {
	for t := parseast.TagNone; t <= parseast.TagConstructor; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return parseast.TagNone, false
}
