package scanner

import (
	"fmt"
	"io"
	"sort"

	"github.com/mna/loxvm/lang/token"
)

// Error describes a single diagnostic produced while scanning or compiling
// source text, modeled on go/scanner.Error but native to our own
// token.Position.
type Error struct {
	Pos token.Position
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos.Filename != "" || e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Msg
	}
	return e.Msg
}

// ErrorList is a list of *Error. The zero value is an empty list ready to
// use.
type ErrorList []*Error

// Add appends an Error with the given position and message.
func (l *ErrorList) Add(pos token.Position, msg string) {
	*l = append(*l, &Error{Pos: pos, Msg: msg})
}

// Reset empties the list.
func (l *ErrorList) Reset() { *l = (*l)[0:0] }

func (l ErrorList) Len() int      { return len(l) }
func (l ErrorList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

func (l ErrorList) Less(i, j int) bool {
	e, f := &l[i].Pos, &l[j].Pos
	if e.Filename != f.Filename {
		return e.Filename < f.Filename
	}
	if e.Line() != f.Line() {
		return e.Line() < f.Line()
	}
	if e.Col() != f.Col() {
		return e.Col() < f.Col()
	}
	return l[i].Msg < l[j].Msg
}

// Sort orders the list by position, ready for deterministic reporting.
func (l ErrorList) Sort() { sort.Sort(l) }

// Error implements the error interface, combining all diagnostics into a
// single message.
func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Unwrap exposes the individual diagnostics for errors.Is/errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns an error equivalent to this list, or nil if the list is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// PrintError prints err to w, one diagnostic per line if err is an
// ErrorList, otherwise it prints the error string as-is.
func PrintError(w io.Writer, err error) {
	if list, ok := err.(ErrorList); ok {
		for _, e := range list {
			fmt.Fprintf(w, "%s\n", e)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(w, "%s\n", err)
	}
}
