package scanner

import (
	"testing"

	"github.com/mna/loxvm/lang/token"
	"github.com/stretchr/testify/require"
)

func scanKinds(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := ScanAll("test", []byte(src))
	require.NoError(t, err)
	kinds := make([]token.Token, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestScanPunctuation(t *testing.T) {
	kinds := scanKinds(t, "(){},.-+;*/! != = == < <= > >=")
	want := []token.Token{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON,
		token.STAR, token.SLASH, token.BANG, token.BANG_EQUAL, token.EQUAL,
		token.EQUAL_EQUAL, token.LESS, token.LESS_EQUAL, token.GREATER,
		token.GREATER_EQUAL, token.EOF,
	}
	require.Equal(t, want, kinds)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	kinds := scanKinds(t, "and class else false for fun if nil or print return super this true var while foo _bar baz123")
	want := []token.Token{
		token.AND, token.CLASS, token.ELSE, token.FALSE, token.FOR, token.FUN,
		token.IF, token.NIL, token.OR, token.PRINT, token.RETURN, token.SUPER,
		token.THIS, token.TRUE, token.VAR, token.WHILE,
		token.IDENTIFIER, token.IDENTIFIER, token.IDENTIFIER,
		token.EOF,
	}
	require.Equal(t, want, kinds)
}

func TestScanNumbers(t *testing.T) {
	toks, err := ScanAll("test", []byte("123 1.5 0.001"))
	require.NoError(t, err)
	require.Len(t, toks, 4)
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, "1.5", toks[1].Lexeme)
	require.Equal(t, "0.001", toks[2].Lexeme)
	require.Equal(t, token.EOF, toks[3].Kind)
}

func TestScanNumberTrailingDotIsNotFraction(t *testing.T) {
	// a trailing '.' not followed by a digit is its own DOT token, e.g. 1.next()
	toks, err := ScanAll("test", []byte("1."))
	require.NoError(t, err)
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, token.DOT, toks[1].Kind)
}

func TestScanString(t *testing.T) {
	toks, err := ScanAll("test", []byte(`"hello world"`))
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello world", toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks, err := ScanAll("test", []byte(`"hello`))
	require.Error(t, err)
	require.Equal(t, token.ERROR, toks[0].Kind)
}

func TestScanSkipsCommentsAndWhitespace(t *testing.T) {
	kinds := scanKinds(t, "// a full line comment\n  print 1; // trailing\n")
	want := []token.Token{token.PRINT, token.NUMBER, token.SEMICOLON, token.EOF}
	require.Equal(t, want, kinds)
}

func TestScanTracksLines(t *testing.T) {
	toks, err := ScanAll("test", []byte("var a = 1;\nvar b = 2;"))
	require.NoError(t, err)
	require.Equal(t, 1, toks[0].Pos.Line())
	var found bool
	for i, tok := range toks {
		if tok.Kind == token.VAR && i > 0 {
			require.Equal(t, 2, tok.Pos.Line())
			found = true
		}
	}
	require.True(t, found)
}

func TestScanIllegalCharacter(t *testing.T) {
	toks, err := ScanAll("test", []byte("@"))
	require.Error(t, err)
	require.Equal(t, token.ERROR, toks[0].Kind)
}
