package solver

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/lumalang/luma/internal/types"
)

// ParseType parses the textual type syntax used by constraint-set files:
// `$T0`, `Int`, `inout $T1`, `($T0, Int) -> $T2`, `($T0, $T1)`. Type
// variables are resolved against vars by ID.
func ParseType(src string, vars map[uint32]*types.TypeVariable) (types.Type, error) {
	tokens, err := tokenizeTypeExpr(src)
	if err != nil {
		return nil, errors.Wrapf(err, "tokenizing %q", src)
	}
	if len(tokens) == 0 {
		return nil, errors.Errorf("empty type expression")
	}

	p := &typeExprParser{tokens: tokens, vars: vars}
	t, err := p.parseType()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", src)
	}
	if p.pos != len(p.tokens) {
		return nil, errors.Errorf("trailing tokens in %q at %q", src, p.tokens[p.pos])
	}
	return t, nil
}

func tokenizeTypeExpr(src string) ([]string, error) {
	var tokens []string
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(' || r == ')' || r == ',':
			tokens = append(tokens, string(r))
			i++

		case r == '-':
			if i+1 >= len(runes) || runes[i+1] != '>' {
				return nil, errors.Errorf("stray '-' at offset %d", i)
			}
			tokens = append(tokens, "->")
			i += 2

		case r == '$':
			start := i
			i++
			if i >= len(runes) || runes[i] != 'T' {
				return nil, errors.Errorf("expected 'T' after '$' at offset %d", start)
			}
			i++
			digits := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			if i == digits {
				return nil, errors.Errorf("expected digits after '$T' at offset %d", start)
			}
			tokens = append(tokens, string(runes[start:i]))

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))

		default:
			return nil, errors.Errorf("unexpected character %q at offset %d", r, i)
		}
	}
	return tokens, nil
}

type typeExprParser struct {
	tokens []string
	pos    int
	vars   map[uint32]*types.TypeVariable
}

func (p *typeExprParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *typeExprParser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *typeExprParser) parseType() (types.Type, error) {
	switch tok := p.peek(); {
	case tok == "inout":
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &types.InOut{Element: elem}, nil

	case tok == "(":
		return p.parseParenGroup()

	case tok == "":
		return nil, errors.Errorf("unexpected end of type expression")

	case strings.HasPrefix(tok, "$T"):
		p.next()
		id, err := strconv.ParseUint(tok[2:], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "bad type variable %q", tok)
		}
		tv, ok := p.vars[uint32(id)]
		if !ok {
			return nil, errors.Errorf("unknown type variable %s", tok)
		}
		return tv, nil

	case tok == ")" || tok == "," || tok == "->":
		return nil, errors.Errorf("unexpected token %q", tok)

	default:
		p.next()
		return &types.Nominal{Name: tok}, nil
	}
}

// parseParenGroup parses a parenthesised element list, which becomes a
// function type when followed by '->', a tuple when it has zero or several
// elements, and the bare element otherwise.
func (p *typeExprParser) parseParenGroup() (types.Type, error) {
	p.next() // consume '('

	var elems []types.Type
	if p.peek() != ")" {
		for {
			elem, err := p.parseType()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
			if p.peek() != "," {
				break
			}
			p.next()
		}
	}
	if tok := p.next(); tok != ")" {
		return nil, errors.Errorf("expected ')', got %q", tok)
	}

	if p.peek() == "->" {
		p.next()
		result, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &types.Function{Params: elems, Result: result}, nil
	}

	if len(elems) == 1 {
		return elems[0], nil
	}
	return &types.Tuple{Elements: elems}, nil
}
