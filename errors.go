package chimera

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// ParseError is returned for source that tokenizes but does not form a
// syntactically valid Script, or whose literals are malformed (bad escape
// sequence, unbalanced interpolation parens, unparsable number).
type ParseError struct {
	Pos lexer.Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}
