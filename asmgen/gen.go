package asmgen

import "github.com/polaris/c-compiler/tacky"

// Generate runs the full code generation stage over a tacky.Program:
// instruction selection, pseudo-register-to-stack assignment, and
// operand-constraint fix-up, leaving prog ready for Emit.
func Generate(tackyProg *tacky.Program) *Program {
	prog := Select(tackyProg)
	for _, fn := range prog.Functions {
		frameSize := AssignStackSlots(fn)
		FixUp(fn, frameSize)
	}
	return prog
}
