package lower

import (
	"fmt"

	"github.com/curtismckinney/necronomicon/internal/core"
	"github.com/curtismckinney/necronomicon/internal/machine"
	"github.com/curtismckinney/necronomicon/internal/machine/build"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// pass3 emits an update function (and, for stateful nodes, an init
// allocator) for every node def whose state is not static.
func (l *Lowerer) pass3(prog *core.Program) {
	for _, nd := range l.allNodes {
		if nd.State == symtable.StateStatic {
			continue
		}
		l.buildNode(nd)
	}
}

func globalFn(fn *machine.FnDef) machine.Value {
	return machine.Value{Kind: machine.ValGlobal, Type: fn.IRType(), Global: fn.Name}
}

// buildNode synthesizes nd's struct (if a nested node didn't already get
// one from Pass 2's top-level-only synthesis), its init allocator (if
// stateful), and its update function.
func (l *Lowerer) buildNode(nd *machine.NodeDef) {
	if nd.StructT == nil && (nd.State == symtable.StateStateful || nd.State == symtable.StateConstant) {
		l.synthesizeStruct(nd)
	}
	if nd.State == symtable.StateStateful {
		l.buildInit(nd)
	}
	l.buildUpdate(nd)
}

func (l *Lowerer) buildInit(nd *machine.NodeDef) {
	name := l.Interner.Intern(fmt.Sprintf("mk@%s", l.Interner.MustLookup(nd.TypeName.ID)))
	fn := machine.NewFnDef(name, nil, machine.PointerType(nd.StructT), machine.FnUser)
	b := build.New(fn, l.Interner)
	ptr := b.Nalloc(nd.StructT, len(nd.StructT.Members))
	b.StoreIntoTag(machine.U32Value(0), ptr)
	for i := 1; i < len(nd.StructT.Members); i++ {
		b.StoreIntoSlot(machine.NullPtrValue(l.Handles.PolyPtr), ptr, i)
	}
	b.Return(ptr)
	l.Prog.AddFunc(fn)
	nd.Init = fn
}

func (l *Lowerer) buildUpdate(nd *machine.NodeDef) {
	var params []*machine.Type
	if nd.State == symtable.StateStateful {
		params = append(params, machine.PointerType(nd.StructT))
	}
	for range nd.ArgDefs {
		params = append(params, l.Handles.PolyPtr)
	}

	name := l.Interner.Intern(fmt.Sprintf("update@%s", l.Interner.MustLookup(nd.BindingName.ID)))
	fn := machine.NewFnDef(name, params, nd.ValueType, machine.FnUser)
	b := build.New(fn, l.Interner)
	nd.Update = fn

	env := make(map[symtable.ID]machine.Value)
	var selfPtr machine.Value
	offset := 0
	if nd.State == symtable.StateStateful {
		selfPtr = machine.ParamValue(name, 0, params[0])
		offset = 1
	}
	for i, def := range nd.ArgDefs {
		env[def] = machine.ParamValue(name, offset+i, l.Handles.PolyPtr)
	}

	body := l.bodies[nd]
	v := l.lowerExpr(b, body, nd, selfPtr, env)
	if b.Fn.Current.Term == nil {
		b.Return(v)
	}
	l.Prog.AddFunc(fn)
}

// lowerExpr structurally recurses on a Core expression, emitting IR into
// b's current block and returning the produced Value. Case is
// the one exception: it always terminates the current block itself
// (each alternative ends in its own return), so callers in tail
// position simply forward without adding a further terminator — see
// buildUpdate's "if b.Fn.Current.Term == nil" guard above.
func (l *Lowerer) lowerExpr(b *build.Builder, n core.Node, nd *machine.NodeDef, selfPtr machine.Value, env map[symtable.ID]machine.Value) machine.Value {
	switch t := n.(type) {
	case *core.Lit:
		switch t.LitKind {
		case core.LitInt:
			return machine.I64Value(t.Int)
		case core.LitFloat:
			return machine.F64Value(t.Float)
		case core.LitChar:
			return machine.Value{Kind: machine.ValLitU32, Type: machine.CharType(), U32: uint32(t.Char)}
		default:
			panic("lower: string literals are not supported by pass 3")
		}

	case *core.Var:
		return l.lowerVar(b, t, nd, selfPtr, env)

	case *core.App:
		return l.lowerApp(b, t, nd, selfPtr, env)

	case *core.Let:
		for _, bind := range t.Binds {
			l.lowerLetBind(b, bind, nd, selfPtr, env)
		}
		return l.lowerExpr(b, t.Body, nd, selfPtr, env)

	case *core.Lambda:
		return l.lowerExpr(b, t.Body, nd, selfPtr, env)

	case *core.Case:
		l.lowerCase(b, t, nd, selfPtr, env)
		return machine.Value{}

	default:
		panic("lower: unhandled core node in Pass 3")
	}
}

func (l *Lowerer) lowerVar(b *build.Builder, v *core.Var, nd *machine.NodeDef, selfPtr machine.Value, env map[symtable.ID]machine.Value) machine.Value {
	if v.IsCon {
		rec := l.Table.Get(v.Ref)
		mk, _ := rec.CurrentNode.(*machine.FnDef)
		if mk == nil {
			panic("lower: constructor has no mk function")
		}
		return b.Call(globalFn(mk), nil)
	}
	rec := l.Table.Get(v.Ref)
	if rec.SlotIndex > 0 {
		return b.LoadFromSlot(selfPtr, rec.SlotIndex)
	}
	if val, ok := env[v.Ref]; ok {
		return val
	}
	if top := l.nodeOf(v.Ref); top != nil && top.Global != nil {
		return b.LoadFromSlot(*top.Global, 1)
	}
	if fn, ok := rec.CurrentNode.(*machine.FnDef); ok {
		return globalFn(fn)
	}
	panic("lower: unresolved variable reference")
}

func (l *Lowerer) lowerApp(b *build.Builder, app *core.App, nd *machine.NodeDef, selfPtr machine.Value, env map[symtable.ID]machine.Value) machine.Value {
	head, argExprs := unwindApp(app)
	argVals := make([]machine.Value, len(argExprs))
	for i, a := range argExprs {
		argVals[i] = l.lowerExpr(b, a, nd, selfPtr, env)
	}

	if hv, ok := head.(*core.Var); ok {
		if hv.IsCon {
			// Applied directly here (with the real payload args), not via
			// lowerVar's bare-reference path, which always calls a
			// zero-arg constructor's mk with no arguments — correct only
			// for nullary constructors referenced standalone, never for
			// one applied to fields (mk functions for arity>0 constructors
			// take the fields as parameters).
			rec := l.Table.Get(hv.Ref)
			mk, _ := rec.CurrentNode.(*machine.FnDef)
			if mk == nil {
				panic("lower: constructor has no mk function")
			}
			return b.Call(globalFn(mk), argVals)
		}
		if callee := l.nodeOf(hv.Ref); callee != nil {
			if callee.State == symtable.StateStateful {
				idx, ok := l.appSlots[app]
				if !ok {
					panic("lower: missing closure slot for stateful call site")
				}
				closure := b.LoadFromSlot(selfPtr, idx)
				calleeSelf := b.BitCast(closure, machine.PointerType(callee.StructT))
				callArgs := append([]machine.Value{calleeSelf}, argVals...)
				return b.Call(globalFn(callee.Update), callArgs)
			}
			return b.Call(globalFn(callee.Update), argVals)
		}
		if fn, ok := l.Table.Get(hv.Ref).CurrentNode.(*machine.FnDef); ok {
			return b.Call(globalFn(fn), argVals)
		}
	}

	fnVal := l.lowerExpr(b, head, nd, selfPtr, env)
	return b.Call(fnVal, argVals)
}

// lowerLetBind realizes a nested bind at the point it's declared:
// constant binds are evaluated immediately and remembered in env;
// stateful binds are allocated via their own init function, stored into
// the captor's slot if one was assigned, and remembered in env;
// pointwise binds need nothing done here (call sites resolve them
// structurally via nodeOf, per lowerApp).
func (l *Lowerer) lowerLetBind(b *build.Builder, bind *core.Bind, nd *machine.NodeDef, selfPtr machine.Value, env map[symtable.ID]machine.Value) {
	nd2 := l.nodeOf(bind.Def)
	if nd2 == nil {
		return
	}
	switch nd2.State {
	case symtable.StateConstant:
		v := b.Call(globalFn(nd2.Update), nil)
		env[bind.Def] = v
	case symtable.StateStateful:
		inst := b.Call(globalFn(nd2.Init), nil)
		rec := l.Table.Get(bind.Def)
		if rec.SlotIndex > 0 {
			b.StoreIntoSlot(inst, selfPtr, rec.SlotIndex)
		}
		env[bind.Def] = inst
	}
}

func (l *Lowerer) lowerCase(b *build.Builder, t *core.Case, nd *machine.NodeDef, selfPtr machine.Value, env map[symtable.ID]machine.Value) {
	scrutVal := l.lowerExpr(b, t.Scrutinee, nd, selfPtr, env)

	hasLit := false
	for _, alt := range t.Alts {
		if alt.LitEq != nil {
			hasLit = true
		}
	}
	if hasLit {
		l.lowerLiteralChain(b, t.Alts, scrutVal, nd, selfPtr, env)
		return
	}

	dispatchBlock := b.Fn.Current
	necroPtr := b.GEP(scrutVal, []int{0, 0})
	tagVal := b.LoadFromSlot(necroPtr, 0)

	var cases []machine.SwitchCase
	var defaultBlk *machine.Block
	for i, alt := range t.Alts {
		blk := b.Fn.AddBlock(l.Interner.Intern(fmt.Sprintf("case.alt%d", i)))
		b.Fn.Current = blk
		l.bindFields(alt, scrutVal, b, env)
		v := l.lowerExpr(b, alt.Body, nd, selfPtr, env)
		if blk.Term == nil {
			blk.Term = &machine.Terminator{Kind: machine.TermReturn, Value: v}
		}
		if alt.IsWildcard {
			defaultBlk = blk
		} else {
			cases = append(cases, machine.SwitchCase{Tag: alt.Tag, Target: blk})
		}
	}
	dispatchBlock.Term = &machine.Terminator{Kind: machine.TermSwitch, SwitchOn: tagVal, Cases: cases, Default: defaultBlk}
}

func (l *Lowerer) bindFields(alt *core.CaseAlt, scrutVal machine.Value, b *build.Builder, env map[symtable.ID]machine.Value) {
	for i, def := range alt.FieldDefs {
		env[def] = b.LoadFromSlot(scrutVal, i+1)
	}
}

// lowerLiteralChain compiles case alternatives with LitEq patterns (no
// constructor tag to switch on) as a cascading equality test against the
// scrutinee's unboxed numeric payload, falling through to the wildcard
// alternative. A more general design would combine a tag switch with
// guarded literal branches in one dispatch; this keeps the two forms
// separate since no Core program produced by internal/core mixes
// literal and constructor patterns in one Case.
func (l *Lowerer) lowerLiteralChain(b *build.Builder, alts []*core.CaseAlt, scrutVal machine.Value, nd *machine.NodeDef, selfPtr machine.Value, env map[symtable.ID]machine.Value) {
	cur := b.Fn.Current
	// The scrutinee arrives as Poly*; the payload is slot 1 of the boxed
	// Int (or Float, when a float literal is tested) it points to.
	boxT := l.Handles.Int
	for _, alt := range alts {
		if lit, ok := alt.LitEq.(*core.Lit); ok && lit.LitKind == core.LitFloat {
			boxT = l.Handles.Float
		}
	}
	payload := b.LoadFromSlot(b.BitCast(scrutVal, machine.PointerType(boxT)), 1)

	for i, alt := range alts {
		if alt.LitEq == nil {
			blk := b.Fn.AddBlock(l.Interner.Intern(fmt.Sprintf("case.lit.else%d", i)))
			b.Fn.Current = blk
			v := l.lowerExpr(b, alt.Body, nd, selfPtr, env)
			if blk.Term == nil {
				blk.Term = &machine.Terminator{Kind: machine.TermReturn, Value: v}
			}
			cur.Term = &machine.Terminator{Kind: machine.TermBr, Target: blk}
			return
		}

		b.Fn.Current = cur
		litVal := l.lowerExpr(b, alt.LitEq, nd, selfPtr, env)
		cond := b.Binop(payload, litVal, machine.BinEq)

		matchBlk := b.Fn.AddBlock(l.Interner.Intern(fmt.Sprintf("case.lit.match%d", i)))
		b.Fn.Current = matchBlk
		v := l.lowerExpr(b, alt.Body, nd, selfPtr, env)
		if matchBlk.Term == nil {
			matchBlk.Term = &machine.Terminator{Kind: machine.TermReturn, Value: v}
		}

		nextBlk := b.Fn.AddBlock(l.Interner.Intern(fmt.Sprintf("case.lit.next%d", i)))
		cur.Term = &machine.Terminator{Kind: machine.TermCondBr, Cond: cond, Then: matchBlk, Else: nextBlk}
		cur = nextBlk
	}
	cur.Term = &machine.Terminator{Kind: machine.TermUnreachable}
}
