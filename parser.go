package chimera

import (
	"github.com/alecthomas/participle/v2"
)

var dslLexer = newDSLLexer()

var parser = participle.MustBuild[Script](
	participle.Lexer(dslLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// Parse parses ChimeraScript source into a Script AST. Every StringLit in
// the resulting tree has its Fragments populated: literal text interspersed
// with interpolated variable references.
func Parse(data []byte) (*Script, error) {
	script, err := parser.ParseBytes("", data)
	if err != nil {
		return nil, err
	}

	if err := resolveLiterals(script); err != nil {
		return nil, err
	}

	return script, nil
}

// ParseString is a convenience wrapper around Parse for source held as a
// string rather than a byte slice.
func ParseString(source string) (*Script, error) {
	return Parse([]byte(source))
}
