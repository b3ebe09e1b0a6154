package resolve

import (
	"github.com/pkg/errors"

	"github.com/polaris/c-compiler/ast"
	"github.com/polaris/c-compiler/internal/fresh"
)

// UnboundControlError reports a break or continue outside any enclosing
// loop (and, for break, switch).
type UnboundControlError struct{ Keyword string }

func (e *UnboundControlError) Error() string {
	return errors.Errorf("%s statement not within a loop or switch", e.Keyword).Error()
}

// SwitchError reports a case/default misuse: outside a switch, a second
// default, or a duplicate case constant.
type SwitchError struct{ Message string }

func (e *SwitchError) Error() string {
	return errors.Errorf("%s", e.Message).Error()
}

// switchState is the mutable bookkeeping for the innermost enclosing
// switch: shared by reference across the recursive descent so sibling
// case/default statements see each other's registrations.
type switchState struct {
	hasDefault bool
	cases      map[int64]bool
}

type labelContext struct {
	// breakLabel is the target of the innermost enclosing loop or switch,
	// whichever is textually closer to the break statement: entering
	// either construct overwrites it for the nested scope.
	breakLabel string
	// loopLabel is the target of the innermost enclosing loop only; a
	// switch does not update it, since continue skips over a switch to
	// the loop that contains it.
	loopLabel string
	sw        *switchState
}

func labelFunction(fn *ast.Function, counter *fresh.Counter) error {
	return labelBlock(fn.Body, labelContext{}, counter)
}

func labelBlock(b *ast.Block, ctx labelContext, counter *fresh.Counter) error {
	for _, item := range b.Items {
		if stmt, ok := item.(ast.Statement); ok {
			if err := labelStmt(stmt, ctx, counter); err != nil {
				return err
			}
		}
	}
	return nil
}

func labelStmt(stmt ast.Statement, ctx labelContext, counter *fresh.Counter) error {
	switch st := stmt.(type) {
	case *ast.WhileStmt:
		st.Label = counter.Label("while")
		child := ctx
		child.loopLabel = st.Label
		child.breakLabel = st.Label
		return labelStmt(st.Body, child, counter)

	case *ast.DoWhileStmt:
		st.Label = counter.Label("do_while")
		child := ctx
		child.loopLabel = st.Label
		child.breakLabel = st.Label
		return labelStmt(st.Body, child, counter)

	case *ast.ForStmt:
		st.Label = counter.Label("for")
		child := ctx
		child.loopLabel = st.Label
		child.breakLabel = st.Label
		return labelStmt(st.Body, child, counter)

	case *ast.SwitchStmt:
		st.Label = counter.Label("switch")
		child := ctx
		child.breakLabel = st.Label
		child.sw = &switchState{cases: map[int64]bool{}}
		return labelStmt(st.Body, child, counter)

	case *ast.CaseStmt:
		if ctx.sw == nil {
			return &SwitchError{Message: "case statement not within a switch"}
		}
		constant, ok := st.Const.(*ast.Constant)
		if !ok {
			return &SwitchError{Message: "case label must be a constant expression"}
		}
		if ctx.sw.cases[constant.Value] {
			return &SwitchError{Message: "duplicate case value in switch"}
		}
		ctx.sw.cases[constant.Value] = true
		return labelStmt(st.Stmt, ctx, counter)

	case *ast.DefaultStmt:
		if ctx.sw == nil {
			return &SwitchError{Message: "default statement not within a switch"}
		}
		if ctx.sw.hasDefault {
			return &SwitchError{Message: "multiple default labels in one switch"}
		}
		ctx.sw.hasDefault = true
		return labelStmt(st.Stmt, ctx, counter)

	case *ast.BreakStmt:
		if ctx.breakLabel == "" {
			return &UnboundControlError{Keyword: "break"}
		}
		st.Target = ctx.breakLabel

	case *ast.ContinueStmt:
		if ctx.loopLabel == "" {
			return &UnboundControlError{Keyword: "continue"}
		}
		st.Target = ctx.loopLabel

	case *ast.IfStmt:
		if err := labelStmt(st.Then, ctx, counter); err != nil {
			return err
		}
		if st.Else != nil {
			return labelStmt(st.Else, ctx, counter)
		}

	case *ast.LabeledStmt:
		return labelStmt(st.Stmt, ctx, counter)

	case *ast.CompoundStmt:
		return labelBlock(st.Block, ctx, counter)

	case *ast.ReturnStmt, *ast.GotoStmt, *ast.NullStmt, *ast.ExprStmt:
		// no loop/switch context to propagate

	default:
		panic(errors.Errorf("resolve: unhandled statement type %T", stmt))
	}
	return nil
}
