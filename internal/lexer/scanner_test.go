package lexer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indentlang/internal/source"
)

func newTestScanner(t *testing.T, src string) *Scanner {
	t.Helper()
	path := t.TempDir() + "/t.il"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	rdr, err := source.NewReader(path, nil)
	require.NoError(t, err)
	return NewScanner(rdr)
}

func kindsOf(s *Scanner) []Kind {
	var kinds []Kind
	for {
		kinds = append(kinds, s.Token().Kind)
		if s.Token().Kind == ENDMARKER {
			return kinds
		}
		s.Next()
	}
}

func TestTokenizesSimpleStatement(t *testing.T) {
	s := newTestScanner(t, "int a = 3\n")
	assert.Equal(t, []Kind{INT, IDENT, ASSIGN, INTLIT, NEWLINE, ENDMARKER}, kindsOf(s))
}

func TestAdjacentOperandsKeepEveryToken(t *testing.T) {
	// No whitespace between tokens; every one must still come through.
	s := newTestScanner(t, "a=b+c*2\n")
	assert.Equal(t, []Kind{IDENT, ASSIGN, IDENT, PLUS, IDENT, STAR, INTLIT, NEWLINE, ENDMARKER}, kindsOf(s))
}

func TestTwoCharOperators(t *testing.T) {
	s := newTestScanner(t, "a == b != c <> d <= e >= f\n")
	assert.Equal(t, []Kind{IDENT, EQ, IDENT, NE, IDENT, ALTNE, IDENT, LE, IDENT, GE, IDENT, NEWLINE, ENDMARKER}, kindsOf(s))
}

func TestIndentDedentBracketing(t *testing.T) {
	src := "if x\n    print x\nprint y\n"
	s := newTestScanner(t, src)
	assert.Equal(t, []Kind{
		IF, IDENT, NEWLINE,
		INDENT, PRINT, IDENT, NEWLINE, DEDENT,
		PRINT, IDENT, NEWLINE,
		ENDMARKER,
	}, kindsOf(s))
}

func TestNestedDedentsUnwindInOrder(t *testing.T) {
	src := "while a\n    if b\n        pass\nprint c\n"
	s := newTestScanner(t, src)
	assert.Equal(t, []Kind{
		WHILE, IDENT, NEWLINE,
		INDENT, IF, IDENT, NEWLINE,
		INDENT, PASS, NEWLINE, DEDENT, DEDENT,
		PRINT, IDENT, NEWLINE,
		ENDMARKER,
	}, kindsOf(s))
}

func TestBlankAndCommentLinesAreInvisible(t *testing.T) {
	src := "int a = 1\n\n# a comment line\n    # indented comment\nprint a  # trailing comment\n"
	s := newTestScanner(t, src)
	assert.Equal(t, []Kind{
		INT, IDENT, ASSIGN, INTLIT, NEWLINE,
		PRINT, IDENT, NEWLINE,
		ENDMARKER,
	}, kindsOf(s))
}

func TestLiteralLexemes(t *testing.T) {
	s := newTestScanner(t, "x = 3.25\ny = 'q'\nz = \"a\\tb\"\n")
	var got []Token
	for s.Token().Kind != ENDMARKER {
		got = append(got, s.Token())
		s.Next()
	}
	require.Len(t, got, 12)
	assert.Equal(t, FLOATLIT, got[2].Kind)
	assert.Equal(t, "3.25", got[2].Lexeme)
	assert.Equal(t, CHARLIT, got[6].Kind)
	assert.Equal(t, "q", got[6].Lexeme)
	assert.Equal(t, STRLIT, got[10].Kind)
	assert.Equal(t, "a\tb", got[10].Lexeme)
}

func TestKeywordsAreNotIdentifiers(t *testing.T) {
	s := newTestScanner(t, "for x in xs\n    break\n")
	assert.Equal(t, []Kind{
		FOR, IDENT, IN, IDENT, NEWLINE,
		INDENT, BREAK, NEWLINE, DEDENT,
		ENDMARKER,
	}, kindsOf(s))
}

// record advances the scanner n times, collecting (kind, lexeme) pairs
// starting at the current token.
func record(s *Scanner, n int) []Token {
	out := make([]Token, 0, n)
	for len(out) < n {
		out = append(out, s.Token())
		if s.Token().Kind == ENDMARKER {
			break
		}
		s.Next()
	}
	return out
}

func TestSaveScanJumpIsTransparent(t *testing.T) {
	src := "int a = 1\nwhile a < 5\n    a = a + 1\nprint a\n"
	s := newTestScanner(t, src)

	// Walk to the 'while' condition, as the evaluator would.
	for s.Token().Kind != WHILE {
		s.Next()
	}
	s.Next()

	pos := s.Save()
	want := record(s, 12)

	// Arbitrary further scanning past the save point.
	for s.Token().Kind != ENDMARKER {
		s.Next()
	}

	s.Jump(pos)
	got := record(s, 12)

	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Kind, got[i].Kind, "token %d kind", i)
		assert.Equal(t, want[i].Lexeme, got[i].Lexeme, "token %d lexeme", i)
	}
}

func TestJumpAtBlockStartReplaysIndent(t *testing.T) {
	src := "do\n    pass\nwhile 0\n"
	s := newTestScanner(t, src)
	require.Equal(t, DO, s.Token().Kind)
	s.Next() // NEWLINE opening the block
	require.Equal(t, NEWLINE, s.Token().Kind)

	pos := s.Save()
	first := record(s, 5)
	s.Jump(pos)
	second := record(s, 5)
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind, "token %d", i)
	}
	assert.Equal(t, NEWLINE, second[0].Kind)
	assert.Equal(t, INDENT, second[1].Kind)
}
