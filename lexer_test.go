package chimera

import (
	"strings"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenExpect struct {
	typ lexer.TokenType
	val string
}

func lexAll(t *testing.T, input string) []tokenExpect {
	t.Helper()

	def := newDSLLexer()

	lex, err := def.Lex("", strings.NewReader(input))
	require.NoError(t, err)

	var out []tokenExpect

	for {
		tok, err := lex.Next()
		require.NoError(t, err)

		if tok.EOF() {
			break
		}

		if tok.Type == TokenWhitespace || tok.Type == TokenComment {
			continue
		}

		out = append(out, tokenExpect{typ: tok.Type, val: tok.Value})
	}

	return out
}

func TestLexer_Keywords(t *testing.T) {
	t.Parallel()

	toks := lexAll(t, `case ASSERT NOT PRINT var LITERAL LIST FORMAT_STR NEW LENGTH APPEND REMOVE POP GET PUT POST DELETE EQUALS GTE GT LTE LT STATUS CONTAINS TEARDOWN`)

	want := []lexer.TokenType{
		TokenCase, TokenAssert, TokenNot, TokenPrint, TokenVar, TokenLiteral, TokenList,
		TokenFormatStr, TokenNew, TokenLength, TokenAppend, TokenRemove, TokenPop,
		TokenGet, TokenPut, TokenPost, TokenDelete, TokenEquals, TokenGTE, TokenGT,
		TokenLTE, TokenLT, TokenStatus, TokenContains, TokenTeardown,
	}

	require.Len(t, toks, len(want))

	for i, tt := range toks {
		assert.Equal(t, want[i], tt.typ, "token %d (%q)", i, tt.val)
	}
}

func TestLexer_IdentDistinctFromKeyword(t *testing.T) {
	t.Parallel()

	toks := lexAll(t, "case_like my-ident")
	require.Len(t, toks, 2)
	assert.Equal(t, TokenIdent, toks[0].typ)
	assert.Equal(t, TokenIdent, toks[1].typ)
}

func TestLexer_Numbers(t *testing.T) {
	t.Parallel()

	tests := []string{"0", "42", "-7", "3.14", "1e10", "1.5e-3"}

	for _, src := range tests {
		toks := lexAll(t, src)
		if assert.Len(t, toks, 1, "lex(%q)", src) {
			assert.Equal(t, TokenNumber, toks[0].typ, "lex(%q)", src)
			assert.Equal(t, src, toks[0].val, "lex(%q)", src)
		}
	}
}

func TestLexer_NegativeZeroRejected(t *testing.T) {
	t.Parallel()

	def := newDSLLexer()

	lex, err := def.Lex("", strings.NewReader("-0"))
	require.NoError(t, err)

	_, err = lex.Next()
	assert.Error(t, err, "expected an error tokenizing -0")
}

func TestLexer_Punctuation(t *testing.T) {
	t.Parallel()

	toks := lexAll(t, "{ } [ ] ( ) ; , . : = => ? & /")

	want := []lexer.TokenType{
		TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket, TokenLParen, TokenRParen,
		TokenSemi, TokenComma, TokenDot, TokenColon, TokenAssignOp, TokenArrow,
		TokenQuestion, TokenAmp, TokenSlash,
	}

	require.Len(t, toks, len(want))

	for i, tt := range toks {
		assert.Equal(t, want[i], tt.typ, "token %d (%q)", i, tt.val)
	}
}

func TestLexer_Comments(t *testing.T) {
	t.Parallel()

	toks := lexAll(t, "a // line comment\nb /* block /* nested */ comment */ c")

	want := []string{"a", "b", "c"}
	require.Len(t, toks, len(want))

	for i, tt := range toks {
		assert.Equal(t, want[i], tt.val, "token %d", i)
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	t.Parallel()

	def := newDSLLexer()

	lex, err := def.Lex("", strings.NewReader(`"unterminated`))
	require.NoError(t, err)

	_, err = lex.Next()
	assert.Error(t, err, "expected unterminated string error")
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	t.Parallel()

	def := newDSLLexer()

	lex, err := def.Lex("", strings.NewReader("@"))
	require.NoError(t, err)

	_, err = lex.Next()
	assert.Error(t, err, "expected unexpected-character error")
}
