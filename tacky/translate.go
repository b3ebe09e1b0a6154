package tacky

import (
	"github.com/pkg/errors"

	"github.com/polaris/c-compiler/ast"
	"github.com/polaris/c-compiler/internal/fresh"
)

// Translate lowers a validated ast.Program into a tacky.Program.
func Translate(prog *ast.Program, counter *fresh.Counter) *Program {
	out := &Program{}
	for _, fn := range prog.Functions {
		out.Functions = append(out.Functions, translateFunction(fn, counter))
	}
	return out
}

type translator struct {
	counter        *fresh.Counter
	body           []Instruction
	caseLabelStack []map[ast.Statement]string
}

func translateFunction(fn *ast.Function, counter *fresh.Counter) *Function {
	tr := &translator{counter: counter}
	tr.block(fn.Body)
	tr.emit(&Return{Val: &Constant{Value: 0}})
	return &Function{Name: fn.Name, Body: tr.body}
}

func (tr *translator) emit(inst Instruction) {
	tr.body = append(tr.body, inst)
}

func (tr *translator) freshVar(tag string) *Variable {
	return &Variable{Name: tr.counter.Name(tag)}
}

func (tr *translator) block(b *ast.Block) {
	for _, item := range b.Items {
		switch it := item.(type) {
		case *ast.Declaration:
			if it.Init != nil {
				v := tr.expr(it.Init)
				tr.emit(&Copy{Src: v, Dst: &Variable{Name: it.Name}})
			}
		case ast.Statement:
			tr.stmt(it)
		}
	}
}

func (tr *translator) stmt(stmt ast.Statement) {
	switch st := stmt.(type) {
	case *ast.ReturnStmt:
		v := tr.expr(st.Expr)
		tr.emit(&Return{Val: v})

	case *ast.ExprStmt:
		tr.expr(st.Expr)

	case *ast.IfStmt:
		if st.Else == nil {
			endLabel := tr.counter.Label("if_end")
			c := tr.expr(st.Cond)
			tr.emit(&JumpIfZero{Cond: c, Target: endLabel})
			tr.stmt(st.Then)
			tr.emit(&Label{Name: endLabel})
		} else {
			elseLabel := tr.counter.Label("if_else")
			endLabel := tr.counter.Label("if_end")
			c := tr.expr(st.Cond)
			tr.emit(&JumpIfZero{Cond: c, Target: elseLabel})
			tr.stmt(st.Then)
			tr.emit(&Jump{Target: endLabel})
			tr.emit(&Label{Name: elseLabel})
			tr.stmt(st.Else)
			tr.emit(&Label{Name: endLabel})
		}

	case *ast.GotoStmt:
		tr.emit(&Jump{Target: st.Label})

	case *ast.LabeledStmt:
		tr.emit(&Label{Name: st.Label})
		tr.stmt(st.Stmt)

	case *ast.CompoundStmt:
		tr.block(st.Block)

	case *ast.NullStmt:
		// nothing emitted

	case *ast.BreakStmt:
		tr.emit(&Jump{Target: "break_" + st.Target})

	case *ast.ContinueStmt:
		tr.emit(&Jump{Target: "continue_" + st.Target})

	case *ast.WhileStmt:
		tr.emit(&Label{Name: "continue_" + st.Label})
		c := tr.expr(st.Cond)
		tr.emit(&JumpIfZero{Cond: c, Target: "break_" + st.Label})
		tr.stmt(st.Body)
		tr.emit(&Jump{Target: "continue_" + st.Label})
		tr.emit(&Label{Name: "break_" + st.Label})

	case *ast.DoWhileStmt:
		startLabel := tr.counter.Label("do_while_start")
		tr.emit(&Label{Name: startLabel})
		tr.stmt(st.Body)
		tr.emit(&Label{Name: "continue_" + st.Label})
		c := tr.expr(st.Cond)
		tr.emit(&JumpIfNotZero{Cond: c, Target: startLabel})
		tr.emit(&Label{Name: "break_" + st.Label})

	case *ast.ForStmt:
		tr.forInit(st.Init)
		startLabel := tr.counter.Label("for_start")
		tr.emit(&Label{Name: startLabel})
		if st.Cond != nil {
			c := tr.expr(st.Cond)
			tr.emit(&JumpIfZero{Cond: c, Target: "break_" + st.Label})
		}
		tr.stmt(st.Body)
		tr.emit(&Label{Name: "continue_" + st.Label})
		if st.Post != nil {
			tr.expr(st.Post)
		}
		tr.emit(&Jump{Target: startLabel})
		tr.emit(&Label{Name: "break_" + st.Label})

	case *ast.SwitchStmt:
		tr.switchStmt(st)

	case *ast.CaseStmt:
		tr.emit(&Label{Name: tr.topCaseLabels()[st]})
		tr.stmt(st.Stmt)

	case *ast.DefaultStmt:
		tr.emit(&Label{Name: tr.topCaseLabels()[st]})
		tr.stmt(st.Stmt)

	default:
		panic(errors.Errorf("tacky: unhandled statement type %T", stmt))
	}
}

func (tr *translator) forInit(init ast.ForInit) {
	switch it := init.(type) {
	case *ast.Declaration:
		if it.Init != nil {
			v := tr.expr(it.Init)
			tr.emit(&Copy{Src: v, Dst: &Variable{Name: it.Name}})
		}
	case *ast.ExprInit:
		if it.Expr != nil {
			tr.expr(it.Expr)
		}
	default:
		panic(errors.Errorf("tacky: unhandled for-init type %T", init))
	}
}

// switchCase pairs a case constant with the label its dispatch-table
// comparison jumps to.
type switchCase struct {
	Value int64
	Label string
}

func (tr *translator) switchStmt(st *ast.SwitchStmt) {
	cases, defaultLabel, labels := tr.collectSwitchLabels(st.Body)

	v := tr.expr(st.Expr)
	for _, c := range cases {
		eq := tr.freshVar("switch_eq")
		tr.emit(&Binary{Op: Equal, Src1: v, Src2: &Constant{Value: c.Value}, Dst: eq})
		tr.emit(&JumpIfNotZero{Cond: eq, Target: c.Label})
	}
	if defaultLabel != "" {
		tr.emit(&Jump{Target: defaultLabel})
	} else {
		tr.emit(&Jump{Target: "break_" + st.Label})
	}

	tr.caseLabelStack = append(tr.caseLabelStack, labels)
	tr.stmt(st.Body)
	tr.caseLabelStack = tr.caseLabelStack[:len(tr.caseLabelStack)-1]

	tr.emit(&Label{Name: "break_" + st.Label})
}

func (tr *translator) topCaseLabels() map[ast.Statement]string {
	return tr.caseLabelStack[len(tr.caseLabelStack)-1]
}

// collectSwitchLabels walks a switch's body once, assigning a fresh label
// to every Case and Default it owns directly (not through a nested
// switch), per the collect-then-emit two-pass design spec §9 calls for.
func (tr *translator) collectSwitchLabels(body ast.Statement) (cases []switchCase, defaultLabel string, labels map[ast.Statement]string) {
	labels = map[ast.Statement]string{}
	var walk func(s ast.Statement)
	walk = func(s ast.Statement) {
		switch st := s.(type) {
		case *ast.CaseStmt:
			label := tr.counter.Label("case")
			labels[st] = label
			constant := st.Const.(*ast.Constant)
			cases = append(cases, switchCase{Value: constant.Value, Label: label})
			walk(st.Stmt)
		case *ast.DefaultStmt:
			label := tr.counter.Label("default")
			labels[st] = label
			defaultLabel = label
			walk(st.Stmt)
		case *ast.IfStmt:
			walk(st.Then)
			if st.Else != nil {
				walk(st.Else)
			}
		case *ast.LabeledStmt:
			walk(st.Stmt)
		case *ast.CompoundStmt:
			for _, item := range st.Block.Items {
				if sub, ok := item.(ast.Statement); ok {
					walk(sub)
				}
			}
		case *ast.WhileStmt:
			walk(st.Body)
		case *ast.DoWhileStmt:
			walk(st.Body)
		case *ast.ForStmt:
			walk(st.Body)
		case *ast.SwitchStmt:
			// A nested switch's cases belong to it, not this dispatch
			// table; it collects and lowers them itself.
		default:
			// Return, Goto, Null, ExprStmt, Break, Continue: nothing to collect.
		}
	}
	walk(body)
	return cases, defaultLabel, labels
}

func (tr *translator) expr(e ast.Expr) Value {
	switch ex := e.(type) {
	case *ast.Constant:
		return &Constant{Value: ex.Value}

	case *ast.Var:
		return &Variable{Name: ex.Name}

	case *ast.Unary:
		return tr.unary(ex)

	case *ast.Binary:
		return tr.binary(ex)

	case *ast.Conditional:
		return tr.conditional(ex)

	case *ast.Assignment:
		v := tr.expr(ex.Right)
		dst := ex.Left.(*ast.Var)
		tr.emit(&Copy{Src: v, Dst: &Variable{Name: dst.Name}})
		return v

	default:
		panic(errors.Errorf("tacky: unhandled expression type %T", e))
	}
}

func (tr *translator) unary(ex *ast.Unary) Value {
	switch ex.Op {
	case ast.Negate, ast.Complement, ast.Not:
		src := tr.expr(ex.Inner)
		dst := tr.freshVar("tmp")
		tr.emit(&Unary{Op: unaryOpOf(ex.Op), Src: src, Dst: dst})
		return dst

	case ast.PreIncrement, ast.PreDecrement:
		v := tr.expr(ex.Inner)
		op := Add
		if ex.Op == ast.PreDecrement {
			op = Subtract
		}
		tr.emit(&Binary{Op: op, Src1: v, Src2: &Constant{Value: 1}, Dst: v})
		dst := tr.freshVar("tmp")
		tr.emit(&Copy{Src: v, Dst: dst})
		return dst

	case ast.PostIncrement, ast.PostDecrement:
		v := tr.expr(ex.Inner)
		dst := tr.freshVar("tmp")
		tr.emit(&Copy{Src: v, Dst: dst})
		op := Add
		if ex.Op == ast.PostDecrement {
			op = Subtract
		}
		tr.emit(&Binary{Op: op, Src1: v, Src2: &Constant{Value: 1}, Dst: v})
		return dst

	default:
		panic(errors.Errorf("tacky: unhandled unary operator %v", ex.Op))
	}
}

func (tr *translator) binary(ex *ast.Binary) Value {
	switch ex.Op {
	case ast.LogicalAnd:
		result := tr.freshVar("and_result")
		falseLabel := tr.counter.Label("and_false")
		endLabel := tr.counter.Label("and_end")
		a := tr.expr(ex.Left)
		tr.emit(&JumpIfZero{Cond: a, Target: falseLabel})
		b := tr.expr(ex.Right)
		tr.emit(&JumpIfZero{Cond: b, Target: falseLabel})
		tr.emit(&Copy{Src: &Constant{Value: 1}, Dst: result})
		tr.emit(&Jump{Target: endLabel})
		tr.emit(&Label{Name: falseLabel})
		tr.emit(&Copy{Src: &Constant{Value: 0}, Dst: result})
		tr.emit(&Label{Name: endLabel})
		return result

	case ast.LogicalOr:
		result := tr.freshVar("or_result")
		trueLabel := tr.counter.Label("or_true")
		endLabel := tr.counter.Label("or_end")
		a := tr.expr(ex.Left)
		tr.emit(&JumpIfNotZero{Cond: a, Target: trueLabel})
		b := tr.expr(ex.Right)
		tr.emit(&JumpIfNotZero{Cond: b, Target: trueLabel})
		tr.emit(&Copy{Src: &Constant{Value: 0}, Dst: result})
		tr.emit(&Jump{Target: endLabel})
		tr.emit(&Label{Name: trueLabel})
		tr.emit(&Copy{Src: &Constant{Value: 1}, Dst: result})
		tr.emit(&Label{Name: endLabel})
		return result

	default:
		v1 := tr.expr(ex.Left)
		v2 := tr.expr(ex.Right)
		dst := tr.freshVar("tmp")
		tr.emit(&Binary{Op: binaryOpOf(ex.Op), Src1: v1, Src2: v2, Dst: dst})
		return dst
	}
}

func (tr *translator) conditional(ex *ast.Conditional) Value {
	result := tr.freshVar("cond_result")
	elseLabel := tr.counter.Label("cond_else")
	endLabel := tr.counter.Label("cond_end")
	c := tr.expr(ex.Cond)
	tr.emit(&JumpIfZero{Cond: c, Target: elseLabel})
	a := tr.expr(ex.Then)
	tr.emit(&Copy{Src: a, Dst: result})
	tr.emit(&Jump{Target: endLabel})
	tr.emit(&Label{Name: elseLabel})
	b := tr.expr(ex.Else)
	tr.emit(&Copy{Src: b, Dst: result})
	tr.emit(&Label{Name: endLabel})
	return result
}

func unaryOpOf(op ast.UnaryOp) UnaryOp {
	switch op {
	case ast.Negate:
		return Negate
	case ast.Complement:
		return Complement
	case ast.Not:
		return Not
	default:
		panic(errors.Errorf("tacky: no TACKY unary operator for %v", op))
	}
}

func binaryOpOf(op ast.BinaryOp) BinaryOp {
	switch op {
	case ast.Add:
		return Add
	case ast.Subtract:
		return Subtract
	case ast.Multiply:
		return Multiply
	case ast.Divide:
		return Divide
	case ast.Remainder:
		return Remainder
	case ast.BitwiseAnd:
		return BitwiseAnd
	case ast.BitwiseOr:
		return BitwiseOr
	case ast.BitwiseXor:
		return BitwiseXor
	case ast.ShiftLeft:
		return ShiftLeft
	case ast.ShiftRight:
		return ShiftRight
	case ast.Equal:
		return Equal
	case ast.NotEqual:
		return NotEqual
	case ast.LessThan:
		return LessThan
	case ast.LessOrEqual:
		return LessOrEqual
	case ast.GreaterThan:
		return GreaterThan
	case ast.GreaterOrEqual:
		return GreaterOrEqual
	default:
		panic(errors.Errorf("tacky: no TACKY binary operator for %v", op))
	}
}
