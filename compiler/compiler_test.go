package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polaris/c-compiler/compileopts"
)

func TestCompileMinimalReturn(t *testing.T) {
	c := New(`int main(void) { return 2; }`)
	asm, err := c.Compile()
	require.NoError(t, err)
	require.Contains(t, asm, ".globl _main")
	require.Contains(t, asm, "movl $2, %eax")
}

func TestCompileLexErrorIsFatal(t *testing.T) {
	c := New(`int main(void) { return 2 $ 3; }`)
	_, err := c.Compile()
	require.Error(t, err)
}

func TestCompileParseErrorIsFatal(t *testing.T) {
	c := New(`int main(void) { return ; }`)
	_, err := c.Compile()
	require.Error(t, err)
}

func TestCompileValidationErrorIsFatal(t *testing.T) {
	c := New(`int main(void) { return x; }`)
	_, err := c.Compile()
	require.Error(t, err)
}

func TestCompileToStopsAtRequestedStage(t *testing.T) {
	c := New(`int main(void) { return 2; }`)

	lexResult, err := c.CompileTo(compileopts.StageLex)
	require.NoError(t, err)
	require.NotEmpty(t, lexResult.Tokens)
	require.Nil(t, lexResult.Program)

	c = New(`int main(void) { return 2; }`)
	parseResult, err := c.CompileTo(compileopts.StageParse)
	require.NoError(t, err)
	require.NotNil(t, parseResult.Program)
	require.Empty(t, parseResult.Assembly)

	c = New(`int main(void) { return 2; }`)
	tackyResult, err := c.CompileTo(compileopts.StageTacky)
	require.NoError(t, err)
	require.NotNil(t, tackyResult.Tacky)
	require.Empty(t, tackyResult.Assembly)
}

// The end-to-end scenarios from spec §8. We can't assemble and run the
// output in this environment, so each scenario only checks that the source
// compiles without error and that the assembly has a _main entry and a
// ret; the exit-code values themselves are not checked here.
func TestCompileEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"plain return", `int main(void){ return 2; }`},
		{"nested unary", `int main(void){ return -(~5 + 1); }`},
		{"precedence", `int main(void){ int a=1; int b=2; return a+b*3; }`},
		{"short circuit", `int main(void){ int a=0; if (1 && (2||0)) a=1; return a; }`},
		{"for loop", `int main(void){ int a=0; for (int i=0;i<5;i=i+1) a=a+i; return a; }`},
		{"switch", `int main(void){ int x=3; int y=0; switch(x){ case 1: y=10; break; case 3: y=30; break; default: y=99; } return y; }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.src)
			asm, err := c.Compile()
			require.NoError(t, err)
			require.True(t, strings.Contains(asm, "_main:"))
			require.True(t, strings.Contains(asm, "ret"))
		})
	}
}
