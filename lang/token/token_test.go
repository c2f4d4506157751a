package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d must have a string form", tok)
	}
}

func TestGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENTIFIER.GoString())
	require.Equal(t, "end of file", EOF.GoString())
}

func TestLookupIdent(t *testing.T) {
	cases := []struct {
		lit  string
		want Token
	}{
		{"and", AND},
		{"class", CLASS},
		{"while", WHILE},
		{"x", IDENTIFIER},
		{"a", IDENTIFIER},
		{"andx", IDENTIFIER},
		{"printer", IDENTIFIER},
	}
	for _, tt := range cases {
		require.Equal(t, tt.want, LookupIdent(tt.lit), "lit=%q", tt.lit)
	}
}
