// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scanner

import (
	"bytes"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/mna/loxvm/lang/token"
)

// Token combines a token kind with its source lexeme and position. Unlike
// the teacher's TokenAndValue, there is no separate Value payload: Lox
// numbers and strings carry no escapes, so the lexeme itself is the value
// (a string's lexeme already excludes its surrounding quotes) and the
// compiler converts a number with strconv.ParseFloat when it emits the
// constant.
type Token struct {
	Kind   token.Token
	Lexeme string
	Pos    token.Position
}

// ScanAll tokenizes the full source in one pass and returns the resulting
// token stream along with any lexical errors. The error, if non-nil, is
// guaranteed to be an ErrorList.
func ScanAll(filename string, src []byte) ([]Token, error) {
	var (
		s  Scanner
		el ErrorList
	)
	s.Init(filename, src, el.Add)
	var toks []Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	el.Sort()
	return toks, el.Err()
}

// Scanner lazily tokenizes a single source file for the compiler to
// consume one token at a time.
type Scanner struct {
	// immutable state after Init
	filename string
	src      []byte
	err      func(token.Position, string)

	// mutable scanning state
	invalidByte byte // when cur==RuneError due to failed utf8 decode, the raw byte
	cur         rune // current character
	off         int  // byte offset of cur
	roff        int  // byte offset right after cur
	line        int  // current 1-based line
}

var (
	// byte order mark, only permitted as the very first characters
	bom = [2]byte{0xFE, 0xFF}
	// hashbang line, only permitted as the very first line (or immediately
	// after a bom)
	hashBang = [2]byte{'#', '!'}
)

// Init initializes (or reinitializes) the scanner to tokenize src.
// errHandler, if non-nil, is invoked for every lexical error encountered.
func (s *Scanner) Init(filename string, src []byte, errHandler func(token.Position, string)) {
	s.filename = filename
	s.src = src
	s.err = errHandler

	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.line = 1

	if len(src) >= len(bom) && bytes.Equal(src[:len(bom)], bom[:]) {
		s.off += len(bom)
		s.roff += len(bom)
	}
	if len(src)-s.roff >= len(hashBang) && bytes.Equal(src[s.roff:s.roff+len(hashBang)], hashBang[:]) {
		for s.cur != '\n' && s.cur != -1 {
			s.advance()
		}
	}
	s.advance()
}

// peek returns the byte following the most recently read character without
// advancing the scanner. Returns 0 at end of file.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}

	if s.cur == '\n' {
		s.line++
	}
	s.off = s.roff

	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) pos() token.Position {
	return token.Position{Filename: s.filename, Pos: token.MakePos(s.line, 1)}
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.pos(), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

// advanceIf advances and returns true only if cur matches want.
func (s *Scanner) advanceIf(want byte) bool {
	if s.cur == rune(want) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token in the source, advancing past it.
func (s *Scanner) Scan() Token {
	s.skipWhitespaceAndComments()

	pos := s.pos()
	start := s.off

	var tok token.Token
	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		return Token{Kind: token.LookupIdent(lit), Lexeme: lit, Pos: pos}

	case isDigit(cur):
		lit := s.number()
		return Token{Kind: token.NUMBER, Lexeme: lit, Pos: pos}

	case cur == '"':
		lit, ok := s.string()
		if !ok {
			s.error(start, "unterminated string")
			return Token{Kind: token.ERROR, Lexeme: "unterminated string", Pos: pos}
		}
		return Token{Kind: token.STRING, Lexeme: lit, Pos: pos}

	default:
		s.advance() // always make progress

		switch cur {
		case '(':
			tok = token.LEFT_PAREN
		case ')':
			tok = token.RIGHT_PAREN
		case '{':
			tok = token.LEFT_BRACE
		case '}':
			tok = token.RIGHT_BRACE
		case ',':
			tok = token.COMMA
		case '.':
			tok = token.DOT
		case '-':
			tok = token.MINUS
		case '+':
			tok = token.PLUS
		case ';':
			tok = token.SEMICOLON
		case '*':
			tok = token.STAR
		case '/':
			tok = token.SLASH
		case '!':
			tok = token.BANG
			if s.advanceIf('=') {
				tok = token.BANG_EQUAL
			}
		case '=':
			tok = token.EQUAL
			if s.advanceIf('=') {
				tok = token.EQUAL_EQUAL
			}
		case '<':
			tok = token.LESS
			if s.advanceIf('=') {
				tok = token.LESS_EQUAL
			}
		case '>':
			tok = token.GREATER
			if s.advanceIf('=') {
				tok = token.GREATER_EQUAL
			}
		case -1:
			return Token{Kind: token.EOF, Lexeme: "", Pos: pos}

		default:
			if cur == utf8.RuneError && s.invalidByte > 0 {
				cur = rune(s.invalidByte)
				s.invalidByte = 0
			}
			s.errorf(start, "unexpected character %#U", cur)
			return Token{Kind: token.ERROR, Lexeme: "unexpected character", Pos: pos}
		}
	}
	return Token{Kind: tok, Lexeme: string(s.src[start:s.off]), Pos: pos}
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// number scans an integer or floating point literal. Lox has no exponent
// notation, matching clox's numeric grammar exactly.
func (s *Scanner) number() string {
	start := s.off
	for isDigit(s.cur) {
		s.advance()
	}
	if s.cur == '.' && isDigit(rune(s.peek())) {
		s.advance() // consume '.'
		for isDigit(s.cur) {
			s.advance()
		}
	}
	return string(s.src[start:s.off])
}

// string scans a double-quoted string literal. Lox strings carry no escape
// sequences; the returned lexeme excludes the surrounding quotes. ok is
// false if the string runs off the end of the source.
func (s *Scanner) string() (string, bool) {
	s.advance() // consume opening quote
	start := s.off
	for s.cur != '"' {
		if s.cur == -1 {
			return string(s.src[start:s.off]), false
		}
		s.advance()
	}
	lit := string(s.src[start:s.off])
	s.advance() // consume closing quote
	return lit, true
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch s.cur {
		case ' ', '\t', '\r', '\n':
			s.advance()
		case '/':
			if s.peek() != '/' {
				return
			}
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		default:
			return
		}
	}
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return '0' <= rn && rn <= '9' ||
		rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}
