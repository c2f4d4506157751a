package token

import "testing"

func TestMakePos(t *testing.T) {
	cases := []struct {
		line, col int
	}{
		{1, 1},
		{1, 2},
		{42, 7},
		{MaxLines, 1},
		{1, MaxCols},
	}
	for _, c := range cases {
		p := MakePos(c.line, c.col)
		gotLine, gotCol := p.LineCol()
		if gotLine != c.line || gotCol != c.col {
			t.Errorf("MakePos(%d, %d).LineCol() = (%d, %d), want (%d, %d)",
				c.line, c.col, gotLine, gotCol, c.line, c.col)
		}
	}
}

func TestPosUnknown(t *testing.T) {
	cases := []struct {
		p    Pos
		want bool
	}{
		{Pos(0), true},
		{MakePos(0, 1), true},
		{MakePos(1, 0), true},
		{MakePos(1, 1), false},
		{MakePos(10, 4), false},
	}
	for _, c := range cases {
		if got := c.p.Unknown(); got != c.want {
			t.Errorf("Pos(%d).Unknown() = %t, want %t", c.p, got, c.want)
		}
	}
}
