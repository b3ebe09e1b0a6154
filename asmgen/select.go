package asmgen

import (
	"github.com/pkg/errors"

	"github.com/polaris/c-compiler/tacky"
)

// Select runs instruction selection over a tacky.Program, producing an
// asmgen.Program whose Variable operands are still Pseudo — the
// pseudo-to-stack and fix-up passes run afterward.
func Select(prog *tacky.Program) *Program {
	out := &Program{}
	for _, fn := range prog.Functions {
		out.Functions = append(out.Functions, selectFunction(fn))
	}
	return out
}

func selectFunction(fn *tacky.Function) *Function {
	var body []Instruction
	emit := func(inst Instruction) { body = append(body, inst) }

	for _, inst := range fn.Body {
		selectInstruction(inst, emit)
	}
	return &Function{Name: fn.Name, Body: body}
}

func selectInstruction(inst tacky.Instruction, emit func(Instruction)) {
	switch in := inst.(type) {
	case *tacky.Return:
		emit(&Mov{Src: operand(in.Val), Dst: AX})
		emit(&Ret{})

	case *tacky.Unary:
		switch in.Op {
		case tacky.Not:
			emit(&Cmp{Op1: &Imm{Value: 0}, Op2: operand(in.Src)})
			emit(&Mov{Src: &Imm{Value: 0}, Dst: operand(in.Dst)})
			emit(&SetCC{Cond: E, Dst: operand(in.Dst)})
		case tacky.Negate:
			emit(&Mov{Src: operand(in.Src), Dst: operand(in.Dst)})
			emit(&Unary{Op: Neg, Operand: operand(in.Dst)})
		case tacky.Complement:
			emit(&Mov{Src: operand(in.Src), Dst: operand(in.Dst)})
			emit(&Unary{Op: Not, Operand: operand(in.Dst)})
		default:
			panic(errors.Errorf("asmgen: unhandled TACKY unary operator %v", in.Op))
		}

	case *tacky.Binary:
		selectBinary(in, emit)

	case *tacky.Copy:
		emit(&Mov{Src: operand(in.Src), Dst: operand(in.Dst)})

	case *tacky.Jump:
		emit(&Jmp{Label: in.Target})

	case *tacky.JumpIfZero:
		emit(&Cmp{Op1: operand(in.Cond), Op2: &Imm{Value: 0}})
		emit(&JmpCC{Cond: E, Label: in.Target})

	case *tacky.JumpIfNotZero:
		emit(&Cmp{Op1: operand(in.Cond), Op2: &Imm{Value: 0}})
		emit(&JmpCC{Cond: NE, Label: in.Target})

	case *tacky.Label:
		emit(&Label{Name: in.Name})

	default:
		panic(errors.Errorf("asmgen: unhandled TACKY instruction %T", inst))
	}
}

var relCond = map[tacky.BinaryOp]Cond{
	tacky.Equal:          E,
	tacky.NotEqual:       NE,
	tacky.GreaterThan:    G,
	tacky.GreaterOrEqual: GE,
	tacky.LessThan:       L,
	tacky.LessOrEqual:    LE,
}

var arithOp = map[tacky.BinaryOp]BinaryOp{
	tacky.Add:        Add,
	tacky.Subtract:   Sub,
	tacky.Multiply:   Mult,
	tacky.BitwiseAnd: And,
	tacky.BitwiseOr:  Or,
	tacky.BitwiseXor: Xor,
	tacky.ShiftLeft:  Shl,
	tacky.ShiftRight: Shr,
}

func selectBinary(in *tacky.Binary, emit func(Instruction)) {
	switch in.Op {
	case tacky.Divide:
		emit(&Mov{Src: operand(in.Src1), Dst: AX})
		emit(&Cdq{})
		emit(&Idiv{Src: operand(in.Src2)})
		emit(&Mov{Src: AX, Dst: operand(in.Dst)})

	case tacky.Remainder:
		emit(&Mov{Src: operand(in.Src1), Dst: AX})
		emit(&Cdq{})
		emit(&Idiv{Src: operand(in.Src2)})
		emit(&Mov{Src: DX, Dst: operand(in.Dst)})

	default:
		if cc, ok := relCond[in.Op]; ok {
			emit(&Cmp{Op1: operand(in.Src1), Op2: operand(in.Src2)})
			emit(&Mov{Src: &Imm{Value: 0}, Dst: operand(in.Dst)})
			emit(&SetCC{Cond: cc, Dst: operand(in.Dst)})
			return
		}
		op, ok := arithOp[in.Op]
		if !ok {
			panic(errors.Errorf("asmgen: unhandled TACKY binary operator %v", in.Op))
		}
		emit(&Mov{Src: operand(in.Src1), Dst: operand(in.Dst)})
		emit(&Binary{Op: op, Src: operand(in.Src2), Dst: operand(in.Dst)})
	}
}

func operand(v tacky.Value) Operand {
	switch val := v.(type) {
	case *tacky.Constant:
		return &Imm{Value: val.Value}
	case *tacky.Variable:
		return &Pseudo{Name: val.Name}
	default:
		panic(errors.Errorf("asmgen: unhandled TACKY value %T", v))
	}
}
