package asmgen

// AssignStackSlots walks fn's instructions in order, assigning each
// distinct Pseudo a 4-byte slot at `-4*k(%rbp)` in first-use order, and
// rewrites every Pseudo operand to the corresponding Stack operand. It
// returns the function's frame size, per spec §4.5: `4 * (number of
// distinct pseudos)`.
func AssignStackSlots(fn *Function) int {
	slots := map[string]int{}
	for _, inst := range fn.Body {
		rewriteOperands(inst, func(op Operand) Operand {
			pseudo, ok := op.(*Pseudo)
			if !ok {
				return op
			}
			offset, seen := slots[pseudo.Name]
			if !seen {
				offset = -4 * (len(slots) + 1)
				slots[pseudo.Name] = offset
			}
			return &Stack{Offset: offset}
		})
	}
	return 4 * len(slots)
}

// rewriteOperands applies f to every operand field of inst, replacing it
// with f's result. It is the single place that knows each instruction
// variant's operand shape, so a pass that only transforms operands (pseudo
// assignment) doesn't need its own type switch.
func rewriteOperands(inst Instruction, f func(Operand) Operand) {
	switch in := inst.(type) {
	case *Mov:
		in.Src = f(in.Src)
		in.Dst = f(in.Dst)
	case *Unary:
		in.Operand = f(in.Operand)
	case *Binary:
		in.Src = f(in.Src)
		in.Dst = f(in.Dst)
	case *Cmp:
		in.Op1 = f(in.Op1)
		in.Op2 = f(in.Op2)
	case *Idiv:
		in.Src = f(in.Src)
	case *SetCC:
		in.Dst = f(in.Dst)
	case *Cdq, *Jmp, *JmpCC, *Label, *AllocStack, *Ret:
		// no operands
	}
}
