// Package chimera implements the ChimeraScript language: a small DSL
// for writing black-box tests against HTTP services. This file implements
// the hand-written lexer that feeds the participle grammar in parser.go.
package chimera

import (
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token type constants, negative per participle convention.
const (
	TokenEOF     lexer.TokenType = lexer.EOF
	TokenComment lexer.TokenType = -(iota + 2) //nolint:mnd
	TokenWhitespace
	TokenString
	TokenNumber
	TokenIdent
	// Punctuation.
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenLParen
	TokenRParen
	TokenSemi
	TokenComma
	TokenDot
	TokenColon
	TokenAssignOp
	TokenArrow
	TokenQuestion
	TokenAmp
	TokenSlash
	// Structural keywords.
	TokenCase
	TokenTeardown
	TokenAssert
	TokenNot
	TokenPrint
	TokenVar
	TokenLiteral
	TokenList
	TokenFormatStr
	TokenNew
	TokenLength
	TokenAppend
	TokenRemove
	TokenPop
	TokenGet
	TokenPut
	TokenPost
	TokenDelete
	TokenEquals
	TokenGTE
	TokenGT
	TokenLTE
	TokenLT
	TokenStatus
	TokenContains
)

// keywords maps exact-match keyword strings to their token types. Unlike
// scalar literals (true/false/null), these never appear as plain identifiers.
var keywords = map[string]lexer.TokenType{
	"case":       TokenCase,
	"TEARDOWN":   TokenTeardown,
	"ASSERT":     TokenAssert,
	"NOT":        TokenNot,
	"PRINT":      TokenPrint,
	"var":        TokenVar,
	"LITERAL":    TokenLiteral,
	"LIST":       TokenList,
	"FORMAT_STR": TokenFormatStr,
	"NEW":        TokenNew,
	"LENGTH":     TokenLength,
	"APPEND":     TokenAppend,
	"REMOVE":     TokenRemove,
	"POP":        TokenPop,
	"GET":        TokenGet,
	"PUT":        TokenPut,
	"POST":       TokenPost,
	"DELETE":     TokenDelete,
	"EQUALS":     TokenEquals,
	"GTE":        TokenGTE,
	"GT":         TokenGT,
	"LTE":        TokenLTE,
	"LT":         TokenLT,
	"STATUS":     TokenStatus,
	"CONTAINS":   TokenContains,
}

// LexerError is a fatal tokenization error pinned to a source position.
type LexerError struct {
	msg string
	pos lexer.Position
	ch  rune
}

func (e *LexerError) Error() string {
	if e.ch != 0 {
		return e.pos.String() + ": " + e.msg + ": " + string(e.ch)
	}

	return e.pos.String() + ": " + e.msg
}

func (e *LexerError) withPos(pos lexer.Position) *LexerError {
	return &LexerError{msg: e.msg, pos: pos, ch: e.ch}
}

func (e *LexerError) withChar(ch rune) *LexerError {
	return &LexerError{msg: e.msg, pos: e.pos, ch: ch}
}

var (
	ErrUnterminatedString  = &LexerError{msg: "unterminated string"}
	ErrUnterminatedComment = &LexerError{msg: "unterminated block comment"}
	ErrUnexpectedCharacter = &LexerError{msg: "unexpected character"}
	ErrInvalidNegativeZero = &LexerError{msg: "-0 is not a valid numeric literal"}
)

// dslDefinition implements participle's lexer.Definition for ChimeraScript.
type dslDefinition struct {
	symbols map[string]lexer.TokenType
}

func newDSLLexer() *dslDefinition {
	d := &dslDefinition{
		symbols: map[string]lexer.TokenType{
			"EOF":        TokenEOF,
			"Comment":    TokenComment,
			"Whitespace": TokenWhitespace,
			"String":     TokenString,
			"Number":     TokenNumber,
			"Ident":      TokenIdent,
			"{":          TokenLBrace,
			"}":          TokenRBrace,
			"[":          TokenLBracket,
			"]":          TokenRBracket,
			"(":          TokenLParen,
			")":          TokenRParen,
			";":          TokenSemi,
			",":          TokenComma,
			".":          TokenDot,
			":":          TokenColon,
			"=":          TokenAssignOp,
			"=>":         TokenArrow,
			"?":          TokenQuestion,
			"&":          TokenAmp,
			"/":          TokenSlash,
		},
	}

	for kw, typ := range keywords {
		d.symbols[kw] = typ
	}

	return d
}

// Symbols returns the mapping of symbol names to token types.
func (d *dslDefinition) Symbols() map[string]lexer.TokenType {
	return d.symbols
}

// Lex implements lexer.Definition.
//
//nolint:ireturn
func (d *dslDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return d.LexBytes(filename, data)
}

// LexBytes implements lexer.BytesDefinition.
//
//nolint:ireturn
func (d *dslDefinition) LexBytes(filename string, data []byte) (lexer.Lexer, error) {
	return newLexerState(filename, string(data)), nil
}

// LexString implements lexer.StringDefinition.
//
//nolint:ireturn
func (d *dslDefinition) LexString(filename string, input string) (lexer.Lexer, error) {
	return newLexerState(filename, input), nil
}

type lexerState struct {
	filename string
	input    string
	offset   int
	line     int
	col      int
}

func newLexerState(filename, input string) *lexerState {
	return &lexerState{filename: filename, input: input, line: 1, col: 1}
}

// Next returns the next token.
func (l *lexerState) Next() (lexer.Token, error) {
	if l.eof() {
		return lexer.EOFToken(l.pos()), nil
	}

	start := l.pos()
	r := l.peek()

	if isSpace(r) {
		for !l.eof() && isSpace(l.peek()) {
			l.advance()
		}

		return l.token(TokenWhitespace, start), nil
	}

	if r == '/' && l.peekAt(1) == '/' {
		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}

		return l.token(TokenComment, start), nil
	}

	if r == '/' && l.peekAt(1) == '*' {
		return l.scanBlockComment(start)
	}

	if r == '"' {
		return l.scanString(start)
	}

	if isDigit(r) || (r == '-' && isNonZeroDigit(l.peekAt(1))) {
		return l.scanNumber(start)
	}

	if isIdentStart(r) {
		l.advance()

		for !l.eof() && isIdentContinue(l.peek()) {
			l.advance()
		}

		tok := l.token(TokenIdent, start)
		if kwType, ok := keywords[tok.Value]; ok {
			tok.Type = kwType
		}

		return tok, nil
	}

	if r == '=' && l.peekAt(1) == '>' {
		l.advance()
		l.advance()

		return l.token(TokenArrow, start), nil
	}

	l.advance()

	switch r {
	case '{':
		return l.token(TokenLBrace, start), nil
	case '}':
		return l.token(TokenRBrace, start), nil
	case '[':
		return l.token(TokenLBracket, start), nil
	case ']':
		return l.token(TokenRBracket, start), nil
	case '(':
		return l.token(TokenLParen, start), nil
	case ')':
		return l.token(TokenRParen, start), nil
	case ';':
		return l.token(TokenSemi, start), nil
	case ',':
		return l.token(TokenComma, start), nil
	case '.':
		return l.token(TokenDot, start), nil
	case ':':
		return l.token(TokenColon, start), nil
	case '=':
		return l.token(TokenAssignOp, start), nil
	case '?':
		return l.token(TokenQuestion, start), nil
	case '&':
		return l.token(TokenAmp, start), nil
	case '/':
		return l.token(TokenSlash, start), nil
	}

	return lexer.Token{}, ErrUnexpectedCharacter.withPos(start).withChar(r)
}

func (l *lexerState) pos() lexer.Position {
	return lexer.Position{Filename: l.filename, Offset: l.offset, Line: l.line, Column: l.col}
}

func (l *lexerState) eof() bool { return l.offset >= len(l.input) }

func (l *lexerState) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])

	return r
}

func (l *lexerState) peekAt(n int) rune {
	off := l.offset + n
	if off >= len(l.input) || off < 0 {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[off:])

	return r
}

func (l *lexerState) advance() rune {
	if l.eof() {
		return 0
	}

	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *lexerState) token(typ lexer.TokenType, start lexer.Position) lexer.Token {
	return lexer.Token{Type: typ, Value: l.input[start.Offset:l.offset], Pos: start}
}

func (l *lexerState) scanBlockComment(start lexer.Position) (lexer.Token, error) {
	l.advance() // /
	l.advance() // *

	depth := 1

	for depth > 0 {
		if l.eof() {
			return lexer.Token{}, ErrUnterminatedComment.withPos(start)
		}

		if l.peek() == '/' && l.peekAt(1) == '*' {
			l.advance()
			l.advance()

			depth++

			continue
		}

		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()

			depth--

			continue
		}

		l.advance()
	}

	return l.token(TokenComment, start), nil
}

// scanString scans a quoted string token, leaving escape-sequence and
// interpolation decoding to decodeChimeraString (see string.go). It only
// needs to find the matching, non-escaped closing quote.
func (l *lexerState) scanString(start lexer.Position) (lexer.Token, error) {
	l.advance() // opening quote

	for !l.eof() {
		ch := l.peek()

		if ch == '\\' && l.peekAt(1) != 0 {
			l.advance()
			l.advance()

			continue
		}

		if ch == '"' {
			l.advance()

			return l.token(TokenString, start), nil
		}

		if ch == '\n' {
			return lexer.Token{}, ErrUnterminatedString.withPos(start)
		}

		l.advance()
	}

	return lexer.Token{}, ErrUnterminatedString.withPos(start)
}

func (l *lexerState) scanNumber(start lexer.Position) (lexer.Token, error) {
	if l.peek() == '-' {
		l.advance()
	}

	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()

		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		mark, markLine, markCol := l.offset, l.line, l.col
		l.advance()

		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}

		if isDigit(l.peek()) {
			for !l.eof() && isDigit(l.peek()) {
				l.advance()
			}
		} else {
			l.offset, l.line, l.col = mark, markLine, markCol
		}
	}

	tok := l.token(TokenNumber, start)
	if tok.Value == "-0" {
		return lexer.Token{}, ErrInvalidNegativeZero.withPos(start)
	}

	return tok, nil
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isNonZeroDigit(r rune) bool { return r >= '1' && r <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentContinue(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsKeywordToken returns true if the token type is a structural keyword
// rather than punctuation or a scalar/variable token.
func IsKeywordToken(typ lexer.TokenType) bool {
	switch typ {
	case TokenCase, TokenTeardown, TokenAssert, TokenNot, TokenPrint, TokenVar,
		TokenLiteral, TokenList, TokenFormatStr, TokenNew, TokenLength, TokenAppend,
		TokenRemove, TokenPop, TokenGet, TokenPut, TokenPost, TokenDelete,
		TokenEquals, TokenGTE, TokenGT, TokenLTE, TokenLT, TokenStatus, TokenContains:
		return true
	default:
		return false
	}
}
