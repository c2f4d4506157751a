// Package compiler implements a single-pass Pratt parser that compiles Lox
// source text directly to bytecode, with no intermediate syntax tree: scope
// and upvalue resolution happen inline, driven by an enclosing-compiler
// chain exactly as clox's compiler.c does it.
//
// What is kept from the teacher's own (very differently shaped, two-pass
// AST+resolver) compiler package is its packaging: an array-indexed opcode
// table with a parallel stackEffect table (opcode.go), and a disassembler
// (dasm.go) used by tests; there is no assembler.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/dolthub/swiss"
	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
)

// Precedence levels, low to high, exactly as clox's compiler.c enumerates
// them.
type precedence uint8

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Token]parseRule

func init() {
	rules = map[token.Token]parseRule{
		token.LEFT_PAREN:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		token.DOT:           {infix: (*Compiler).dot, precedence: precCall},
		token.MINUS:         {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		token.PLUS:          {infix: (*Compiler).binary, precedence: precTerm},
		token.SLASH:         {infix: (*Compiler).binary, precedence: precFactor},
		token.STAR:          {infix: (*Compiler).binary, precedence: precFactor},
		token.BANG:          {prefix: (*Compiler).unary},
		token.BANG_EQUAL:    {infix: (*Compiler).binary, precedence: precEquality},
		token.EQUAL_EQUAL:   {infix: (*Compiler).binary, precedence: precEquality},
		token.GREATER:       {infix: (*Compiler).binary, precedence: precComparison},
		token.GREATER_EQUAL: {infix: (*Compiler).binary, precedence: precComparison},
		token.LESS:          {infix: (*Compiler).binary, precedence: precComparison},
		token.LESS_EQUAL:    {infix: (*Compiler).binary, precedence: precComparison},
		token.IDENTIFIER:    {prefix: (*Compiler).variable},
		token.STRING:        {prefix: (*Compiler).string},
		token.NUMBER:        {prefix: (*Compiler).number},
		token.AND:           {infix: (*Compiler).and, precedence: precAnd},
		token.OR:            {infix: (*Compiler).or, precedence: precOr},
		token.FALSE:         {prefix: (*Compiler).literal},
		token.NIL:           {prefix: (*Compiler).literal},
		token.TRUE:          {prefix: (*Compiler).literal},
		token.THIS:          {prefix: (*Compiler).this},
		token.SUPER:         {prefix: (*Compiler).super},
	}
}

func getRule(tok token.Token) parseRule { return rules[tok] }

type local struct {
	name       string
	depth      int // -1 while being declared but not yet defined
	isCaptured bool
}

// Compiler holds the compile-time state for one function body (or the
// implicit top-level script function), chained to its lexically enclosing
// Compiler so upvalue resolution can walk outward the way clox's struct
// Compiler*enclosing does.
type Compiler struct {
	parent *parser

	enclosing *Compiler
	proto     *FunctionProto
	kind      FunctionKind

	locals     []local
	upvalues   []UpvalueDesc
	scopeDepth int

	// names dedups identifier constants within this function's pool, the
	// way the teacher's pcomp.names map dedups name constants per Program.
	names *swiss.Map[string, uint8]
}

type classCompiler struct {
	enclosing      *classCompiler
	hasSuperclass  bool
}

// parser drives the token stream shared by every nested Compiler.
type parser struct {
	sc *scanner.Scanner

	current  scanner.Token
	previous scanner.Token

	errors    scanner.ErrorList
	hadError  bool
	panicMode bool

	current_ *Compiler
	class    *classCompiler
}

// Compile compiles src into a top-level script FunctionProto. The returned
// error, if non-nil, is a scanner.ErrorList.
func Compile(filename string, src []byte) (*FunctionProto, error) {
	var sc scanner.Scanner
	p := &parser{}
	sc.Init(filename, src, p.errors.Add)
	p.sc = &sc

	c := newCompiler(p, nil, FunctionScript, "")
	p.current_ = c

	p.advance()
	for !p.match(token.EOF) {
		c.declaration()
	}
	p.consume(token.EOF, "expect end of expression")

	proto := c.end()
	p.errors.Sort()
	if err := p.errors.Err(); err != nil {
		return nil, err
	}
	return proto, nil
}

func newCompiler(p *parser, enclosing *Compiler, kind FunctionKind, name string) *Compiler {
	c := &Compiler{
		parent:    p,
		enclosing: enclosing,
		proto:     newFunctionProto(name, kind),
		kind:      kind,
		names:     swiss.NewMap[string, uint8](8),
	}
	// slot 0 is reserved: for methods/initializers it holds the receiver
	// ("this"), for plain functions and the script it is simply unused.
	recv := ""
	if kind == FunctionMethod || kind == FunctionInitializer {
		recv = "this"
	}
	c.locals = append(c.locals, local{name: recv, depth: 0})
	return c
}

// --- token stream helpers ---

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.sc.Scan()
		if p.current.Kind != token.ERROR {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(tok token.Token) bool { return p.current.Kind == tok }

func (p *parser) match(tok token.Token) bool {
	if !p.check(tok) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(tok token.Token, msg string) {
	if p.current.Kind == tok {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *parser) errorAt(tok scanner.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	where := ""
	switch tok.Kind {
	case token.EOF:
		where = " at end"
	case token.ERROR:
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	p.errors.Add(tok.Pos, fmt.Sprintf("%s%s", msg, where))
}

func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.SEMICOLON {
			return
		}
		switch p.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// --- emission helpers ---

func (c *Compiler) line() int { return c.parent.previous.Pos.Line() }

func (c *Compiler) emitByte(b byte) int    { return c.proto.writeByte(b, c.line()) }
func (c *Compiler) emitOp(op Opcode) int   { return c.proto.writeOp(op, c.line()) }
func (c *Compiler) emitOpByte(op Opcode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(OP_LOOP)
	offset := len(c.proto.Code) - loopStart + 2
	if offset > 0xffff {
		c.parent.error("loop body too large")
	}
	c.proto.writeUint16(uint16(offset), c.line())
}

// emitJump emits a jump opcode with a placeholder 2-byte offset and returns
// the index of the first offset byte, to be patched later.
func (c *Compiler) emitJump(op Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.proto.Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.proto.Code) - offset - 2
	if jump > 0xffff {
		c.parent.error("jump target too large")
	}
	c.proto.Code[offset] = byte(jump >> 8)
	c.proto.Code[offset+1] = byte(jump)
}

func (c *Compiler) emitReturn() {
	if c.kind == FunctionInitializer {
		c.emitOpByte(OP_GET_LOCAL, 0)
	} else {
		c.emitOp(OP_NIL)
	}
	c.emitOp(OP_RETURN)
}

func (c *Compiler) makeConstant(v any) byte {
	idx := c.proto.addConstant(v)
	if idx > 255 {
		c.parent.error("too many constants in one chunk")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v any) {
	c.emitOpByte(OP_CONSTANT, c.makeConstant(v))
}

func (c *Compiler) end() *FunctionProto {
	c.emitReturn()
	return c.proto
}

// --- scopes ---

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		if c.locals[len(c.locals)-1].isCaptured {
			c.emitOp(OP_CLOSE_UPVALUE)
		} else {
			c.emitOp(OP_POP)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// --- identifier constants ---

func (c *Compiler) identifierConstant(name string) byte {
	if idx, ok := c.names.Get(name); ok {
		return idx
	}
	b := c.makeConstant(name)
	c.names.Put(name, b)
	return b
}

func identifiersEqual(a, b string) bool { return a == b }

func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if identifiersEqual(c.locals[i].name, name) {
			if c.locals[i].depth == -1 {
				c.parent.error("can't read local variable in its own initializer")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(index uint8, isLocal bool) int {
	for i, uv := range c.upvalues {
		if uv.Index == index && uv.IsLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) == 256 {
		c.parent.error("too many closure variables in function")
		return 0
	}
	c.upvalues = append(c.upvalues, UpvalueDesc{Index: index, IsLocal: isLocal})
	c.proto.Upvalues = c.upvalues
	return len(c.upvalues) - 1
}

func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if local := c.enclosing.resolveLocal(name); local != -1 {
		c.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(uint8(local), true)
	}
	if upvalue := c.enclosing.resolveUpvalue(name); upvalue != -1 {
		return c.addUpvalue(uint8(upvalue), false)
	}
	return -1
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) == 256 {
		c.parent.error("too many local variables in function")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.parent.previous.Lexeme
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth != -1 && c.locals[i].depth < c.scopeDepth {
			break
		}
		if identifiersEqual(c.locals[i].name, name) {
			c.parent.error("already a variable with this name in this scope")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) parseVariable(errMsg string) byte {
	c.parent.consume(token.IDENTIFIER, errMsg)
	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.parent.previous.Lexeme)
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(OP_DEFINE_GLOBAL, global)
}

func (c *Compiler) argumentList() byte {
	p := c.parent
	var count int
	if !p.check(token.RIGHT_PAREN) {
		for {
			c.parseExpression(precAssignment)
			if count == 255 {
				p.error("can't have more than 255 arguments")
			}
			count++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "expect ')' after arguments")
	return byte(count)
}

// --- Pratt expression parsing ---

func (c *Compiler) parseExpression(prec precedence) {
	p := c.parent
	p.advance()
	rule := getRule(p.previous.Kind)
	if rule.prefix == nil {
		p.error("expect expression")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(p.current.Kind).precedence {
		p.advance()
		infRule := getRule(p.previous.Kind)
		infRule.infix(c, canAssign)
	}

	if canAssign && p.match(token.EQUAL) {
		p.error("invalid assignment target")
	}
}

func (c *Compiler) expression() { c.parseExpression(precAssignment) }

func (c *Compiler) number(canAssign bool) {
	lit := c.parent.previous.Lexeme
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		c.parent.error("invalid number literal")
		return
	}
	c.emitConstant(v)
}

func (c *Compiler) string(canAssign bool) {
	lit := c.parent.previous.Lexeme
	c.emitConstant(lit)
}

func (c *Compiler) literal(canAssign bool) {
	switch c.parent.previous.Kind {
	case token.FALSE:
		c.emitOp(OP_FALSE)
	case token.TRUE:
		c.emitOp(OP_TRUE)
	case token.NIL:
		c.emitOp(OP_NIL)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.parent.consume(token.RIGHT_PAREN, "expect ')' after expression")
}

func (c *Compiler) unary(canAssign bool) {
	op := c.parent.previous.Kind
	c.parseExpression(precUnary)
	switch op {
	case token.BANG:
		c.emitOp(OP_NOT)
	case token.MINUS:
		c.emitOp(OP_NEGATE)
	}
}

func (c *Compiler) binary(canAssign bool) {
	op := c.parent.previous.Kind
	rule := getRule(op)
	c.parseExpression(rule.precedence + 1)
	switch op {
	case token.BANG_EQUAL:
		c.emitOp(OP_EQUAL)
		c.emitOp(OP_NOT)
	case token.EQUAL_EQUAL:
		c.emitOp(OP_EQUAL)
	case token.GREATER:
		c.emitOp(OP_GREATER)
	case token.GREATER_EQUAL:
		c.emitOp(OP_LESS)
		c.emitOp(OP_NOT)
	case token.LESS:
		c.emitOp(OP_LESS)
	case token.LESS_EQUAL:
		c.emitOp(OP_GREATER)
		c.emitOp(OP_NOT)
	case token.PLUS:
		c.emitOp(OP_ADD)
	case token.MINUS:
		c.emitOp(OP_SUBTRACT)
	case token.STAR:
		c.emitOp(OP_MULTIPLY)
	case token.SLASH:
		c.emitOp(OP_DIVIDE)
	}
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOpByte(OP_CALL, argCount)
}

func (c *Compiler) dot(canAssign bool) {
	p := c.parent
	p.consume(token.IDENTIFIER, "expect property name after '.'")
	name := c.identifierConstant(p.previous.Lexeme)

	switch {
	case canAssign && p.match(token.EQUAL):
		c.expression()
		c.emitOpByte(OP_SET_PROPERTY, name)
	case p.match(token.LEFT_PAREN):
		argCount := c.argumentList()
		c.emitOpByte(OP_INVOKE, name)
		c.emitByte(argCount)
	default:
		c.emitOpByte(OP_GET_PROPERTY, name)
	}
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.parseExpression(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(OP_JUMP_IF_FALSE)
	endJump := c.emitJump(OP_JUMP)
	c.patchJump(elseJump)
	c.emitOp(OP_POP)
	c.parseExpression(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp Opcode
	arg := c.resolveLocal(name)
	switch {
	case arg != -1:
		getOp, setOp = OP_GET_LOCAL, OP_SET_LOCAL
	default:
		if u := c.resolveUpvalue(name); u != -1 {
			arg, getOp, setOp = u, OP_GET_UPVALUE, OP_SET_UPVALUE
		} else {
			arg = int(c.identifierConstant(name))
			getOp, setOp = OP_GET_GLOBAL, OP_SET_GLOBAL
		}
	}

	if canAssign && c.parent.match(token.EQUAL) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.parent.previous.Lexeme, canAssign)
}

func (c *Compiler) this(canAssign bool) {
	if c.parent.class == nil {
		c.parent.error("can't use 'this' outside of a class")
		return
	}
	c.variable(false)
}

func (c *Compiler) super(canAssign bool) {
	p := c.parent
	switch {
	case p.class == nil:
		p.error("can't use 'super' outside of a class")
	case !p.class.hasSuperclass:
		p.error("can't use 'super' in a class with no superclass")
	}

	p.consume(token.DOT, "expect '.' after 'super'")
	p.consume(token.IDENTIFIER, "expect superclass method name")
	name := c.identifierConstant(p.previous.Lexeme)

	c.namedVariableNoAssign("this")
	if p.match(token.LEFT_PAREN) {
		argCount := c.argumentList()
		c.namedVariableNoAssign("super")
		c.emitOpByte(OP_SUPER_INVOKE, name)
		c.emitByte(argCount)
	} else {
		c.namedVariableNoAssign("super")
		c.emitOpByte(OP_GET_SUPER, name)
	}
}

func (c *Compiler) namedVariableNoAssign(name string) { c.namedVariable(name, false) }

// --- statements ---

func (c *Compiler) declaration() {
	p := c.parent
	switch {
	case p.match(token.CLASS):
		c.classDeclaration()
	case p.match(token.FUN):
		c.funDeclaration()
	case p.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (c *Compiler) statement() {
	p := c.parent
	switch {
	case p.match(token.PRINT):
		c.printStatement()
	case p.match(token.FOR):
		c.forStatement()
	case p.match(token.IF):
		c.ifStatement()
	case p.match(token.RETURN):
		c.returnStatement()
	case p.match(token.WHILE):
		c.whileStatement()
	case p.match(token.LEFT_BRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	p := c.parent
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		c.declaration()
	}
	p.consume(token.RIGHT_BRACE, "expect '}' after block")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.parent.consume(token.SEMICOLON, "expect ';' after value")
	c.emitOp(OP_PRINT)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.parent.consume(token.SEMICOLON, "expect ';' after expression")
	c.emitOp(OP_POP)
}

func (c *Compiler) ifStatement() {
	p := c.parent
	p.consume(token.LEFT_PAREN, "expect '(' after 'if'")
	c.expression()
	p.consume(token.RIGHT_PAREN, "expect ')' after condition")

	thenJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.statement()

	elseJump := c.emitJump(OP_JUMP)
	c.patchJump(thenJump)
	c.emitOp(OP_POP)

	if p.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	p := c.parent
	loopStart := len(c.proto.Code)
	p.consume(token.LEFT_PAREN, "expect '(' after 'while'")
	c.expression()
	p.consume(token.RIGHT_PAREN, "expect ')' after condition")

	exitJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(OP_POP)
}

func (c *Compiler) forStatement() {
	p := c.parent
	c.beginScope()
	p.consume(token.LEFT_PAREN, "expect '(' after 'for'")

	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.proto.Code)
	exitJump := -1
	if !p.match(token.SEMICOLON) {
		c.expression()
		p.consume(token.SEMICOLON, "expect ';' after loop condition")
		exitJump = c.emitJump(OP_JUMP_IF_FALSE)
		c.emitOp(OP_POP)
	}

	if !p.match(token.RIGHT_PAREN) {
		bodyJump := c.emitJump(OP_JUMP)
		incrementStart := len(c.proto.Code)
		c.expression()
		c.emitOp(OP_POP)
		p.consume(token.RIGHT_PAREN, "expect ')' after for clauses")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(OP_POP)
	}
	c.endScope()
}

// returnStatement compiles a return, valid inside a function body or at
// top level: a top-level return lets eval/repl surface a result value to
// the host instead of only ever returning nil.
func (c *Compiler) returnStatement() {
	p := c.parent
	if p.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.kind == FunctionInitializer {
		p.error("can't return a value from an initializer")
	}
	c.expression()
	p.consume(token.SEMICOLON, "expect ';' after return value")
	c.emitOp(OP_RETURN)
}

func (c *Compiler) varDeclaration() {
	p := c.parent
	global := c.parseVariable("expect variable name")
	if p.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(OP_NIL)
	}
	p.consume(token.SEMICOLON, "expect ';' after variable declaration")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("expect function name")
	c.markInitialized()
	c.function(FunctionPlain)
	c.defineVariable(global)
}

func (c *Compiler) function(kind FunctionKind) {
	p := c.parent
	name := p.previous.Lexeme
	fc := newCompiler(p, c, kind, name)
	p.current_ = fc
	fc.beginScope()

	p.consume(token.LEFT_PAREN, "expect '(' after function name")
	if !p.check(token.RIGHT_PAREN) {
		for {
			fc.proto.Arity++
			if fc.proto.Arity > 255 {
				p.errorAtCurrent("can't have more than 255 parameters")
			}
			constant := fc.parseVariable("expect parameter name")
			fc.defineVariable(constant)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "expect ')' after parameters")
	p.consume(token.LEFT_BRACE, "expect '{' before function body")
	fc.block()

	proto := fc.end()
	p.current_ = c

	c.emitOpByte(OP_CLOSURE, c.makeConstant(proto))
	for _, uv := range fc.upvalues {
		if uv.IsLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(uv.Index)
	}
}

func (c *Compiler) method() {
	p := c.parent
	p.consume(token.IDENTIFIER, "expect method name")
	name := c.identifierConstant(p.previous.Lexeme)

	kind := FunctionMethod
	if p.previous.Lexeme == "init" {
		kind = FunctionInitializer
	}
	c.function(kind)
	c.emitOpByte(OP_METHOD, name)
}

func (c *Compiler) classDeclaration() {
	p := c.parent
	p.consume(token.IDENTIFIER, "expect class name")
	className := p.previous.Lexeme
	nameConstant := c.identifierConstant(className)
	c.declareVariable()

	c.emitOpByte(OP_CLASS, nameConstant)
	c.defineVariable(nameConstant)

	cc := &classCompiler{enclosing: p.class}
	p.class = cc

	if p.match(token.LESS) {
		p.consume(token.IDENTIFIER, "expect superclass name")
		c.variable(false)
		if className == p.previous.Lexeme {
			p.error("a class can't inherit from itself")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.namedVariableNoAssign(className)
		c.emitOp(OP_INHERIT)
		cc.hasSuperclass = true
	}

	c.namedVariableNoAssign(className)
	p.consume(token.LEFT_BRACE, "expect '{' before class body")
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		c.method()
	}
	p.consume(token.RIGHT_BRACE, "expect '}' after class body")
	c.emitOp(OP_POP)

	if cc.hasSuperclass {
		c.endScope()
	}
	p.class = cc.enclosing
}
