// Package printer implements a human-readable dump of a Machine IR
// Program, one function/struct/node per section, for use in snapshot
// tests and manual inspection.
//
// Grounded on internal/bytecode/disasm.go's Disassembler (an io.Writer-
// driven, section-by-section renderer of one Chunk), adapted here to
// walk a machine.Program's four vectors instead of one flat instruction
// stream, since this IR is tree-shaped rather than a linear bytecode
// array.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/machine"
)

// Printer renders a machine.Program to a writer.
type Printer struct {
	w        io.Writer
	interner *intern.Table
}

func New(w io.Writer, interner *intern.Table) *Printer {
	return &Printer{w: w, interner: interner}
}

// Print renders every struct, node, and function definition in prog, in
// declaration order.
func (p *Printer) Print(prog *machine.Program) {
	if len(prog.Structs) > 0 {
		fmt.Fprintf(p.w, "structs:\n")
		for _, s := range prog.Structs {
			p.printStruct(s)
		}
		fmt.Fprintf(p.w, "\n")
	}

	if len(prog.Nodes) > 0 {
		fmt.Fprintf(p.w, "nodes:\n")
		for _, n := range prog.Nodes {
			p.printNode(n)
		}
		fmt.Fprintf(p.w, "\n")
	}

	if len(prog.Globals) > 0 {
		fmt.Fprintf(p.w, "globals:\n")
		for _, g := range prog.Globals {
			fmt.Fprintf(p.w, "  %s: %s\n", p.sym(g.Global), p.typ(g.Type))
		}
		fmt.Fprintf(p.w, "\n")
	}

	if len(prog.Funcs) > 0 {
		fmt.Fprintf(p.w, "functions:\n")
		for _, f := range prog.Funcs {
			p.printFn(f)
		}
	}
}

func (p *Printer) sym(s intern.Symbol) string {
	if name, ok := p.interner.Lookup(s.ID); ok {
		return name
	}
	return fmt.Sprintf("sym#%d", s.ID)
}

func (p *Printer) printStruct(s *machine.StructDef) {
	fmt.Fprintf(p.w, "  struct %s {\n", p.sym(s.Name))
	for i, m := range s.Members {
		fmt.Fprintf(p.w, "    [%d] %s\n", i, p.typ(m))
	}
	fmt.Fprintf(p.w, "  }\n")
}

func (p *Printer) printNode(n *machine.NodeDef) {
	fmt.Fprintf(p.w, "  node %s (%s) state=%s\n", p.sym(n.BindingName), p.sym(n.TypeName), n.State)
	fmt.Fprintf(p.w, "    value: %s\n", p.typ(n.ValueType))
	if len(n.ArgNames) > 0 {
		names := make([]string, len(n.ArgNames))
		for i, a := range n.ArgNames {
			names[i] = p.sym(a)
		}
		fmt.Fprintf(p.w, "    args: %s\n", strings.Join(names, ", "))
	}
	if len(n.Members) > 0 {
		fmt.Fprintf(p.w, "    members:\n")
		for _, m := range n.Members {
			fmt.Fprintf(p.w, "      [%d] %s\n", m.Index, p.typ(m.Type))
		}
	}
	if n.Init != nil {
		fmt.Fprintf(p.w, "    init: %s\n", p.sym(n.Init.Name))
	}
	if n.Update != nil {
		fmt.Fprintf(p.w, "    update: %s\n", p.sym(n.Update.Name))
	}
	if n.Global != nil {
		fmt.Fprintf(p.w, "    global: %s\n", p.sym(n.Global.Global))
	}
}

func (p *Printer) printFn(f *machine.FnDef) {
	params := make([]string, len(f.Params))
	for i, t := range f.Params {
		params[i] = fmt.Sprintf("%%%d: %s", i, p.typ(t))
	}
	fmt.Fprintf(p.w, "  fn %s(%s) -> %s {\n", p.sym(f.Name), strings.Join(params, ", "), p.typ(f.Return))
	for b := f.Blocks; b != nil; b = b.Next {
		p.printBlock(b)
	}
	fmt.Fprintf(p.w, "  }\n")
}

func (p *Printer) printBlock(b *machine.Block) {
	fmt.Fprintf(p.w, "  %s:\n", p.sym(b.Name))
	for _, s := range b.Stmts {
		fmt.Fprintf(p.w, "      %s\n", p.stmt(s))
	}
	if b.Term != nil {
		fmt.Fprintf(p.w, "      %s\n", p.term(b.Term))
	} else {
		fmt.Fprintf(p.w, "      <no terminator>\n")
	}
}

func (p *Printer) stmt(s machine.Stmt) string {
	switch t := s.(type) {
	case *machine.ValueStmt:
		return fmt.Sprintf("%s", p.val(t.V))
	case *machine.Call:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = p.val(a)
		}
		return fmt.Sprintf("%s = call %s(%s)", p.val(t.Result), p.val(t.Fn), strings.Join(args, ", "))
	case *machine.Load:
		return fmt.Sprintf("%s = load_from_slot %s, %d", p.val(t.Result), p.val(t.Ptr), t.Slot)
	case *machine.Store:
		if t.Slot == 0 {
			return fmt.Sprintf("store_into_tag %s, %s", p.val(t.Val), p.val(t.Ptr))
		}
		return fmt.Sprintf("store_into_slot %s, %s, %d", p.val(t.Val), p.val(t.Ptr), t.Slot)
	case *machine.BitCast:
		return fmt.Sprintf("%s = bit_cast %s to %s", p.val(t.Result), p.val(t.Src), p.typ(t.Result.Type))
	case *machine.Nalloc:
		return fmt.Sprintf("%s = nalloc %s, %d", p.val(t.Result), p.typ(t.Struct), t.Slots)
	case *machine.GetElementPtr:
		idx := make([]string, len(t.Indices))
		for i, n := range t.Indices {
			idx[i] = fmt.Sprintf("%d", n)
		}
		return fmt.Sprintf("%s = gep %s, [%s]", p.val(t.Result), p.val(t.Ptr), strings.Join(idx, ", "))
	case *machine.Binop:
		return fmt.Sprintf("%s = binop %s %s %s", p.val(t.Result), p.val(t.L), binOpString(t.Op), p.val(t.R))
	default:
		return fmt.Sprintf("<unknown stmt %T>", s)
	}
}

func (p *Printer) term(t *machine.Terminator) string {
	switch t.Kind {
	case machine.TermReturn:
		return fmt.Sprintf("return %s", p.val(t.Value))
	case machine.TermBr:
		return fmt.Sprintf("br %s", p.sym(t.Target.Name))
	case machine.TermCondBr:
		return fmt.Sprintf("condbr %s, %s, %s", p.val(t.Cond), p.sym(t.Then.Name), p.sym(t.Else.Name))
	case machine.TermSwitch:
		cases := make([]string, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = fmt.Sprintf("%d -> %s", c.Tag, p.sym(c.Target.Name))
		}
		def := "<none>"
		if t.Default != nil {
			def = p.sym(t.Default.Name)
		}
		return fmt.Sprintf("switch %s [%s] default %s", p.val(t.SwitchOn), strings.Join(cases, ", "), def)
	case machine.TermUnreachable:
		return "unreachable"
	default:
		return "<unknown terminator>"
	}
}

func (p *Printer) val(v machine.Value) string {
	switch v.Kind {
	case machine.ValReg:
		return p.sym(v.Reg)
	case machine.ValParam:
		return fmt.Sprintf("%s.%%%d", p.sym(v.ParamFn), v.ParamIndex)
	case machine.ValGlobal:
		return "@" + p.sym(v.Global)
	case machine.ValLitU16:
		return fmt.Sprintf("%d", v.U16)
	case machine.ValLitU32:
		return fmt.Sprintf("%d", v.U32)
	case machine.ValLitI64:
		return fmt.Sprintf("%d", v.I64)
	case machine.ValLitF64:
		return fmt.Sprintf("%g", v.F64)
	case machine.ValLitNullPtr:
		return "null"
	default:
		return "<unknown value>"
	}
}

func (p *Printer) typ(t *machine.Type) string {
	if t == nil {
		return "<none>"
	}
	switch t.Kind {
	case machine.TypeU16:
		return "u16"
	case machine.TypeU32:
		return "u32"
	case machine.TypeI64:
		return "i64"
	case machine.TypeF64:
		return "f64"
	case machine.TypeChar:
		return "char"
	case machine.TypePointer:
		return p.typ(t.Pointee) + "*"
	case machine.TypeStruct:
		return p.sym(t.StructName)
	case machine.TypeFunction:
		params := make([]string, len(t.Params))
		for i, pt := range t.Params {
			params[i] = p.typ(pt)
		}
		return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), p.typ(t.Return))
	default:
		return "<unknown type>"
	}
}

func binOpString(op machine.BinOpKind) string {
	switch op {
	case machine.BinAdd:
		return "+"
	case machine.BinSub:
		return "-"
	case machine.BinMul:
		return "*"
	case machine.BinDiv:
		return "/"
	case machine.BinEq:
		return "=="
	case machine.BinNeq:
		return "!="
	case machine.BinLt:
		return "<"
	case machine.BinGt:
		return ">"
	case machine.BinLte:
		return "<="
	case machine.BinGte:
		return ">="
	default:
		return "?"
	}
}
