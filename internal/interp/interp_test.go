package interp

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indentlang/internal/registry"
	"indentlang/internal/source"
	"indentlang/internal/value"
)

func runProgram(t *testing.T, src string) string {
	return runProgramWithInput(t, src, "")
}

func runProgramWithInput(t *testing.T, src, stdin string) string {
	t.Helper()
	path := t.TempDir() + "/main.il"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	reg := registry.New()
	value.SetRegistryHook(reg)
	defer value.SetRegistryHook(nil)

	rdr, err := source.NewReader(path, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	it := New(rdr, &out, strings.NewReader(stdin), reg, false)
	it.Run()

	assert.Empty(t, reg.Live(), "no live objects should remain after exit")
	return out.String()
}

func TestArithmeticPromotion(t *testing.T) {
	out := runProgram(t, "int a = 3\nfloat b = 2.0\nprint a + b\n")
	assert.Equal(t, "5\n", out)
}

func TestListIterationAndSlicing(t *testing.T) {
	out := runProgram(t, "list xs = [1,2,3,4,5]\nfor x in xs\n    print x\nprint xs[1:4]\n")
	assert.Equal(t, "1\n2\n3\n4\n5\n[2, 3, 4]\n", out)
}

func TestForwardReferencedFunction(t *testing.T) {
	out := runProgram(t, "print f(10)\ndef f(n)\n    if n <= 1\n        return 1\n    return n * f(n-1)\n")
	assert.Equal(t, "3628800\n", out)
}

func TestBreakAndContinue(t *testing.T) {
	src := "int i = 0\nwhile i < 10\n    i = i + 1\n    if i == 3\n        continue\n    if i == 6\n        break\n    print i\n"
	out := runProgram(t, src)
	assert.Equal(t, "1\n2\n4\n5\n", out)
}

func TestStringConcatAndIn(t *testing.T) {
	out := runProgram(t, "str s = \"abc\"\nprint s + \"de\"\nprint \"b\" in s\n")
	assert.Equal(t, "abcde\n1\n", out)
}

func TestReturnFromDeepNesting(t *testing.T) {
	src := "def g()\n    int i = 0\n    while i < 100\n        if i == 5\n            return i\n        i = i + 1\n    return -1\nprint g()\n"
	out := runProgram(t, src)
	assert.Equal(t, "5\n", out)
}

func TestDoWhileChecksConditionAfterBody(t *testing.T) {
	out := runProgram(t, "int i = 0\ndo\n    print i\n    i = i + 1\nwhile i < 3\n")
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestDoWhileRunsBodyAtLeastOnce(t *testing.T) {
	out := runProgram(t, "do\n    print 7\nwhile 0\n")
	assert.Equal(t, "7\n", out)
}

func TestWhileFalseSkipsBody(t *testing.T) {
	out := runProgram(t, "while 0\n    print 1\nprint 2\n")
	assert.Equal(t, "2\n", out)
}

func TestForOverString(t *testing.T) {
	out := runProgram(t, "str s = \"ab\"\nfor c in s\n    print c\n")
	assert.Equal(t, "a\nb\n", out)
}

func TestForOverEmptyList(t *testing.T) {
	out := runProgram(t, "list xs = []\nfor x in xs\n    print x\nprint 9\n")
	assert.Equal(t, "9\n", out)
}

func TestIfElseBranches(t *testing.T) {
	src := "if 1\n    print 10\nelse\n    print 20\nif 0\n    print 30\nelse\n    print 40\n"
	out := runProgram(t, src)
	assert.Equal(t, "10\n40\n", out)
}

func TestNegativeIndexAndStringSlice(t *testing.T) {
	out := runProgram(t, "str s = \"hello\"\nprint s[-1]\nprint s[1:3]\n")
	assert.Equal(t, "o\nel\n", out)
}

func TestAssignmentCoercesToDeclaredType(t *testing.T) {
	out := runProgram(t, "int a = 0\na = 2.9\nprint a\nstr s = 12\nprint s\n")
	assert.Equal(t, "2\n12\n", out)
}

func TestDeclarationListWithDefaults(t *testing.T) {
	out := runProgram(t, "int a, b = 5, c\nprint a, b, c\n")
	assert.Equal(t, "0 5 0\n", out)
}

func TestUnaryAndLogicalOperators(t *testing.T) {
	out := runProgram(t, "print !0, !5\nprint 1 and 0, 1 or 0\nprint -3 + 5\nprint 1 <> 2\n")
	assert.Equal(t, "1 0\n0 1\n2\n1\n", out)
}

func TestCharArithmeticPromotesToInt(t *testing.T) {
	out := runProgram(t, "char c = 'a'\nprint c + 1\n")
	assert.Equal(t, "98\n", out)
}

func TestListRebindIsDeepCopy(t *testing.T) {
	src := "list a = [1,2]\nlist b = a\nb = b + [3]\nprint a\nprint b\n"
	out := runProgram(t, src)
	assert.Equal(t, "[1, 2]\n[1, 2, 3]\n", out)
}

func TestInnerDeclarationShadowsOuter(t *testing.T) {
	src := "int x = 1\ndef f()\n    int x = 99\n    return x\nprint f()\nprint x\n"
	out := runProgram(t, src)
	assert.Equal(t, "99\n1\n", out)
}

func TestNestedCallsStackReturns(t *testing.T) {
	src := "def inner(n)\n    return n + 1\ndef outer(n)\n    return inner(n) * 10\nprint outer(3)\n"
	out := runProgram(t, src)
	assert.Equal(t, "40\n", out)
}

func TestExcessArgumentsAreDiscarded(t *testing.T) {
	out := runProgram(t, "def f(a)\n    return a\nprint f(1, 2, 3)\n")
	assert.Equal(t, "1\n", out)
}

func TestCommentsAndPassAreInert(t *testing.T) {
	src := "# leading comment\nint a = 1  # trailing\nif a\n    pass\nprint a\n"
	out := runProgram(t, src)
	assert.Equal(t, "1\n", out)
}

func TestInputParsesPerDeclaredType(t *testing.T) {
	out := runProgramWithInput(t, "int n\ninput \"n? \" n\nprint n + 1\n", "41\n")
	assert.Equal(t, "n? 42\n", out)
}

func TestImportExecutesTopLevelAndDefinesFunctions(t *testing.T) {
	dir := t.TempDir()
	lib := "def add(a, b)\n    return a + b\nint g = 7\n"
	require.NoError(t, os.WriteFile(dir+"/lib.il", []byte(lib), 0644))
	main := "import \"lib.il\"\nprint add(3, 4)\nprint g\n"
	path := dir + "/main.il"
	require.NoError(t, os.WriteFile(path, []byte(main), 0644))

	reg := registry.New()
	value.SetRegistryHook(reg)
	defer value.SetRegistryHook(nil)

	rdr, err := source.NewReader(path, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	New(rdr, &out, strings.NewReader(""), reg, false).Run()

	assert.Equal(t, "7\n7\n", out.String())
	assert.Empty(t, reg.Live())
}

func TestZeroDivisionIsFatal(t *testing.T) {
	assert.Panics(t, func() {
		runProgram(t, "print 1 / 0\n")
	})
}

func TestUndeclaredIdentifierIsFatal(t *testing.T) {
	assert.Panics(t, func() {
		runProgram(t, "print nosuch\n")
	})
}
