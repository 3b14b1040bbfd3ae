package chimera

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) []StringFragment {
	t.Helper()

	frags, err := decodeChimeraString(raw, lexer.Position{Line: 1, Column: 1})
	require.NoError(t, err, "decodeChimeraString(%q)", raw)

	return frags
}

func TestDecodeChimeraString_PlainLiteral(t *testing.T) {
	t.Parallel()

	frags := decode(t, `"hello world"`)
	require.Len(t, frags, 1)
	assert.Nil(t, frags[0].Var)
	assert.Equal(t, "hello world", frags[0].Literal)
}

func TestDecodeChimeraString_Interpolation(t *testing.T) {
	t.Parallel()

	frags := decode(t, `"Planet (planet) has (continent_count) continents"`)

	want := []StringFragment{
		{Literal: "Planet "},
		{Var: &VariableRef{Parts: []string{"planet"}}},
		{Literal: " has "},
		{Var: &VariableRef{Parts: []string{"continent_count"}}},
		{Literal: " continents"},
	}

	require.Len(t, frags, len(want))

	for i := range want {
		gotVar, wantVar := frags[i].Var, want[i].Var
		if wantVar == nil {
			assert.Nil(t, gotVar, "fragment %d", i)
			assert.Equal(t, want[i].Literal, frags[i].Literal, "fragment %d", i)

			continue
		}

		if assert.NotNil(t, gotVar, "fragment %d", i) {
			assert.Equal(t, wantVar.Parts, gotVar.Parts, "fragment %d", i)
		}
	}
}

func TestDecodeChimeraString_DottedInterpolation(t *testing.T) {
	t.Parallel()

	frags := decode(t, `"(res.body.id)"`)
	require.Len(t, frags, 1)
	require.NotNil(t, frags[0].Var)

	assert.Equal(t, []string{"res", "body", "id"}, frags[0].Var.Parts)
}

func TestDecodeChimeraString_ListIndexInterpolation(t *testing.T) {
	t.Parallel()

	frags := decode(t, `"(my_list.0)"`)
	require.Len(t, frags, 1)
	require.NotNil(t, frags[0].Var)

	assert.Equal(t, []string{"my_list", "0"}, frags[0].Var.Parts)
}

func TestDecodeChimeraString_Escapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{`"\""`, `"`},
		{`"\\"`, `\`},
		{`"\("`, `(`},
		{`"\)"`, `)`},
		{`"\n"`, "\n"},
		{`"\t"`, "\t"},
		{`"A"`, "A"},
	}

	for _, tt := range tests {
		frags := decode(t, tt.raw)
		if assert.Len(t, frags, 1, "decode(%q)", tt.raw) {
			assert.Equal(t, tt.want, frags[0].Literal, "decode(%q)", tt.raw)
		}
	}
}

func TestDecodeChimeraString_UnterminatedInterpolation(t *testing.T) {
	t.Parallel()

	_, err := decodeChimeraString(`"(oops"`, lexer.Position{})
	assert.Error(t, err, "expected an error for unterminated interpolation")
}

func TestDecodeChimeraString_InvalidVariableReference(t *testing.T) {
	t.Parallel()

	_, err := decodeChimeraString(`"(not valid!)"`, lexer.Position{})
	assert.Error(t, err, "expected an error for an invalid variable reference")
}
