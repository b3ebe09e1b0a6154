package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polaris/c-compiler/ast"
	"github.com/polaris/c-compiler/internal/fresh"
	"github.com/polaris/c-compiler/lexer"
)

func parseAndResolve(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	toks, err := lexer.All(src)
	require.NoError(t, err)
	prog, err := ast.Parse(toks)
	require.NoError(t, err)
	err = Program(prog, fresh.New())
	return prog, err
}

func TestResolveRenamesShadowedVariables(t *testing.T) {
	prog, err := parseAndResolve(t, `int main(void) {
		int a = 1;
		{ int a = 2; }
		return a;
	}`)
	require.NoError(t, err)
	outer := prog.Functions[0].Body.Items[0].(*ast.Declaration)
	inner := prog.Functions[0].Body.Items[1].(*ast.CompoundStmt).Block.Items[0].(*ast.Declaration)
	require.NotEqual(t, outer.Name, inner.Name)

	ret := prog.Functions[0].Body.Items[2].(*ast.ReturnStmt)
	v := ret.Expr.(*ast.Var)
	require.Equal(t, outer.Name, v.Name, "return should resolve to the outer a")
}

func TestResolveRedeclarationInSameBlockFails(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) { int a = 1; int a = 2; return a; }`)
	require.Error(t, err)
	var redecl *RedeclarationError
	require.ErrorAs(t, err, &redecl)
}

func TestResolveUndeclaredVariableFails(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) { return x; }`)
	require.Error(t, err)
	var undecl *UndeclaredVarError
	require.ErrorAs(t, err, &undecl)
}

func TestResolveLvalueErrorOnNonVarAssignmentTarget(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) { int a = 1; 1 = a; return a; }`)
	require.Error(t, err)
	var lvalue *LvalueError
	require.ErrorAs(t, err, &lvalue)
}

func TestResolveGotoToUndefinedLabelFails(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) { goto nowhere; return 0; }`)
	require.Error(t, err)
	var undef *UndefinedLabelError
	require.ErrorAs(t, err, &undef)
}

func TestResolveDuplicateLabelFails(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) { l: return 0; l: return 1; }`)
	require.Error(t, err)
	var redef *LabelRedefinitionError
	require.ErrorAs(t, err, &redef)
}

func TestResolveForLoopScopesInitVariable(t *testing.T) {
	prog, err := parseAndResolve(t, `int main(void) {
		int a = 0;
		for (int i = 0; i < 5; i = i + 1) a = a + i;
		return a;
	}`)
	require.NoError(t, err)
	forStmt := prog.Functions[0].Body.Items[1].(*ast.ForStmt)
	initDecl := forStmt.Init.(*ast.Declaration)
	require.NotEmpty(t, initDecl.Name)
}

func TestLabelWhileLoopAssignsLabelAndBreakTarget(t *testing.T) {
	prog, err := parseAndResolve(t, `int main(void) {
		int a = 0;
		while (a < 5) { a = a + 1; break; }
		return a;
	}`)
	require.NoError(t, err)
	whileStmt := prog.Functions[0].Body.Items[1].(*ast.WhileStmt)
	require.NotEmpty(t, whileStmt.Label)
	brk := whileStmt.Body.(*ast.CompoundStmt).Block.Items[1].(*ast.BreakStmt)
	require.Equal(t, whileStmt.Label, brk.Target)
}

func TestLabelBreakOutsideLoopOrSwitchFails(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) { break; return 0; }`)
	require.Error(t, err)
	var unbound *UnboundControlError
	require.ErrorAs(t, err, &unbound)
	require.Equal(t, "break", unbound.Keyword)
}

func TestLabelContinueOutsideLoopFails(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) { continue; return 0; }`)
	require.Error(t, err)
	var unbound *UnboundControlError
	require.ErrorAs(t, err, &unbound)
	require.Equal(t, "continue", unbound.Keyword)
}

func TestLabelBreakInsideSwitchBindsToSwitchNotOuterLoop(t *testing.T) {
	prog, err := parseAndResolve(t, `int main(void) {
		int y = 0;
		while (1) {
			switch (y) { case 0: break; }
			break;
		}
		return y;
	}`)
	require.NoError(t, err)
	whileStmt := prog.Functions[0].Body.Items[1].(*ast.WhileStmt)
	whileBody := whileStmt.Body.(*ast.CompoundStmt)
	switchStmt := whileBody.Block.Items[0].(*ast.SwitchStmt)
	caseStmt := switchStmt.Body.(*ast.CompoundStmt).Block.Items[0].(*ast.CaseStmt)
	innerBreak := caseStmt.Stmt.(*ast.BreakStmt)
	require.Equal(t, switchStmt.Label, innerBreak.Target)

	outerBreak := whileBody.Block.Items[1].(*ast.BreakStmt)
	require.Equal(t, whileStmt.Label, outerBreak.Target)
}

func TestLabelBreakInsideLoopBindsToLoopNotOuterSwitch(t *testing.T) {
	prog, err := parseAndResolve(t, `int main(void) {
		int y = 0;
		switch (y) {
			case 0:
				while (1) { break; }
				break;
		}
		return y;
	}`)
	require.NoError(t, err)
	switchStmt := prog.Functions[0].Body.Items[1].(*ast.SwitchStmt)
	switchBody := switchStmt.Body.(*ast.CompoundStmt).Block
	whileStmt := switchBody.Items[0].(*ast.CaseStmt).Stmt.(*ast.WhileStmt)
	innerBreak := whileStmt.Body.(*ast.CompoundStmt).Block.Items[0].(*ast.BreakStmt)
	require.Equal(t, whileStmt.Label, innerBreak.Target)

	outerBreak := switchBody.Items[1].(*ast.BreakStmt)
	require.Equal(t, switchStmt.Label, outerBreak.Target)
}

func TestLabelDuplicateCaseFails(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) {
		int x = 1;
		switch (x) { case 1: x = 1; case 1: x = 2; }
		return x;
	}`)
	require.Error(t, err)
	var swErr *SwitchError
	require.ErrorAs(t, err, &swErr)
}

func TestLabelMultipleDefaultFails(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) {
		int x = 1;
		switch (x) { default: x = 1; default: x = 2; }
		return x;
	}`)
	require.Error(t, err)
	var swErr *SwitchError
	require.ErrorAs(t, err, &swErr)
}

func TestLabelCaseOutsideSwitchFails(t *testing.T) {
	_, err := parseAndResolve(t, `int main(void) { case 1: return 0; }`)
	require.Error(t, err)
	var swErr *SwitchError
	require.ErrorAs(t, err, &swErr)
}
