package asmgen

// FixUp rewrites fn's instructions to satisfy x86 operand constraints and
// prepends an AllocStack for frameSize, per spec §4.5's fix-up pattern
// table. The rewrite is linear and single-pass: each matched instruction
// is replaced by two or three instructions and the walk advances past
// them without re-examining the replacement.
func FixUp(fn *Function, frameSize int) {
	body := make([]Instruction, 0, len(fn.Body)+1)
	body = append(body, &AllocStack{Size: frameSize})

	for _, inst := range fn.Body {
		body = append(body, fixUpInstruction(inst)...)
	}
	fn.Body = body
}

func fixUpInstruction(inst Instruction) []Instruction {
	switch in := inst.(type) {
	case *Mov:
		if isStack(in.Src) && isStack(in.Dst) {
			return []Instruction{
				&Mov{Src: in.Src, Dst: R10},
				&Mov{Src: R10, Dst: in.Dst},
			}
		}

	case *Idiv:
		if isStack(in.Src) || isImm(in.Src) {
			return []Instruction{
				&Mov{Src: in.Src, Dst: R10},
				&Idiv{Src: R10},
			}
		}

	case *Binary:
		switch in.Op {
		case Add, Sub, And, Or, Xor:
			if isStack(in.Src) && isStack(in.Dst) {
				return []Instruction{
					&Mov{Src: in.Src, Dst: R10},
					&Binary{Op: in.Op, Src: R10, Dst: in.Dst},
				}
			}
		case Mult:
			if isStack(in.Dst) {
				return []Instruction{
					&Mov{Src: in.Dst, Dst: R11},
					&Binary{Op: Mult, Src: in.Src, Dst: R11},
					&Mov{Src: R11, Dst: in.Dst},
				}
			}
		}

	case *Cmp:
		if isStack(in.Op1) && isStack(in.Op2) {
			return []Instruction{
				&Mov{Src: in.Op1, Dst: R10},
				&Cmp{Op1: R10, Op2: in.Op2},
			}
		}
		if isImm(in.Op1) {
			return []Instruction{
				&Mov{Src: in.Op1, Dst: R11},
				&Cmp{Op1: R11, Op2: in.Op2},
			}
		}
	}

	return []Instruction{inst}
}

func isStack(op Operand) bool {
	_, ok := op.(*Stack)
	return ok
}

func isImm(op Operand) bool {
	_, ok := op.(*Imm)
	return ok
}
