package bf

import (
	"fmt"
	"io"
	"strconv"
	"text/scanner"
)

type parser struct {
	s     scanner.Scanner
	eof   bool   // Have we reached eof yet?
	token string // Last token read

	peeked  bool // A token was pushed back by unscan
	peekTok string
	peekEOF bool
}

// Parse parses the formula from the given input Reader.
// It returns the corresponding Formula.
// Formulas are written using the following operators (from lowest to highest priority):
//
// - for an equivalence, the "=" operator,
// - for an implication, the "->" operator,
// - for a disjunction ("or"), the "|" operator,
// - for a conjunction ("and"), the "&" operator,
// - for a negation, the "^" unary operator.
//
// A variable followed by one of the relational operators "==", "!=", "<",
// "<=", ">", ">=" and an integer literal or another variable denotes an
// integer atom, e.g. "x >= 0", "x == 5" or "y > x". A bare variable denotes
// a boolean variable. Note that "=" between variables remains a boolean
// equivalence; integer equality is spelled "==".
//
// Parentheses can be used to group subformulas.
func Parse(r io.Reader) (Formula, error) {
	var s scanner.Scanner
	s.Init(r)
	p := parser{s: s}
	p.scan()
	return p.parseEquiv()
}

func isOperator(token string) bool {
	return token == "=" || token == "->" || token == "|" || token == "&" ||
		token == "<" || token == ">" || token == "!"
}

func (p *parser) scan() {
	if p.peeked {
		p.token = p.peekTok
		p.eof = p.peekEOF
		p.peeked = false
		return
	}
	if p.eof {
		return
	}
	p.eof = (p.s.Scan() == scanner.EOF)
	p.token = p.s.TokenText()
}

// unscan pushes the current token back and makes cur the current token
// again. Only one token of lookahead is ever needed, for the "=" operator.
func (p *parser) unscan(cur string) {
	p.peeked = true
	p.peekTok = p.token
	p.peekEOF = p.eof
	p.token = cur
	p.eof = false
}

func (p *parser) parseEquiv() (f Formula, err error) {
	if p.eof {
		return nil, fmt.Errorf("at position %v, expected expression, found EOF", p.s.Pos())
	}
	if isOperator(p.token) {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	f, err = p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.eof {
		return f, nil
	}
	if p.token == "=" {
		p.scan()
		if p.eof {
			return nil, fmt.Errorf("unexpected EOF")
		}
		f2, err := p.parseEquiv()
		if err != nil {
			return nil, err
		}
		return Eq(f, f2), nil
	}
	return f, nil
}

func (p *parser) parseImplies() (f Formula, err error) {
	f, err = p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.eof {
		return f, nil
	}
	if p.token == "-" {
		p.scan()
		if p.eof {
			return nil, fmt.Errorf("unexpected EOF")
		}
		if p.token != ">" {
			return nil, fmt.Errorf("invalid token %q at %v", "-"+p.token, p.s.Pos())
		}
		p.scan()
		if p.eof {
			return nil, fmt.Errorf("unexpected EOF")
		}
		f2, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return Implies(f, f2), nil
	}
	return f, nil
}

func (p *parser) parseOr() (f Formula, err error) {
	f, err = p.parseAnd()
	if err != nil {
		return nil, err
	}
	if p.eof {
		return f, nil
	}
	if p.token == "|" {
		p.scan()
		if p.eof {
			return nil, fmt.Errorf("unexpected EOF")
		}
		f2, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return Or(f, f2), nil
	}
	return f, nil
}

func (p *parser) parseAnd() (f Formula, err error) {
	f, err = p.parseNot()
	if err != nil {
		return nil, err
	}
	if p.eof {
		return f, nil
	}
	if p.token == "&" {
		p.scan()
		if p.eof {
			return nil, fmt.Errorf("unexpected EOF")
		}
		f2, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		return And(f, f2), nil
	}
	return f, nil
}

func (p *parser) parseNot() (f Formula, err error) {
	if isOperator(p.token) {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	if p.token == "^" {
		p.scan()
		if p.eof {
			return nil, fmt.Errorf("unexpected EOF")
		}
		f, err = p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not(f), nil
	}
	f, err = p.parseBasic()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (p *parser) parseBasic() (f Formula, err error) {
	if isOperator(p.token) || p.token == ")" {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	if p.token == "(" {
		p.scan()
		f, err = p.parseEquiv()
		if err != nil {
			return nil, err
		}
		if p.eof {
			return nil, fmt.Errorf("expected closing parenthesis, found EOF at %s", p.s.Pos())
		}
		if p.token != ")" {
			return nil, fmt.Errorf("expected closing parenthesis, found %q at %s", p.token, p.s.Pos())
		}
		p.scan()
		return f, nil
	}
	name := p.token
	p.scan()
	switch p.token {
	case "<":
		p.scan()
		op := opLt
		if p.token == "=" {
			op = opLe
			p.scan()
		}
		return p.parseAtomRHS(name, op)
	case ">":
		p.scan()
		op := opGt
		if p.token == "=" {
			op = opGe
			p.scan()
		}
		return p.parseAtomRHS(name, op)
	case "!":
		p.scan()
		if p.token != "=" {
			return nil, fmt.Errorf("invalid token %q at %v", "!"+p.token, p.s.Pos())
		}
		p.scan()
		return p.parseAtomRHS(name, opNeq)
	case "=":
		p.scan()
		if p.token == "=" && !p.eof {
			p.scan()
			return p.parseAtomRHS(name, opEq)
		}
		// A single "=" is the equivalence operator: hand it back to
		// parseEquiv.
		p.unscan("=")
		return Var(name), nil
	default:
		return Var(name), nil
	}
}

// parseAtomRHS parses the right-hand side of an integer atom: an integer
// literal, possibly negative, or the name of another integer variable.
func (p *parser) parseAtomRHS(v string, op cmpOp) (Formula, error) {
	if p.eof {
		return nil, fmt.Errorf("unexpected EOF")
	}
	neg := false
	if p.token == "-" {
		neg = true
		p.scan()
		if p.eof {
			return nil, fmt.Errorf("unexpected EOF")
		}
	}
	if k, err := strconv.Atoi(p.token); err == nil {
		if neg {
			k = -k
		}
		p.scan()
		return intAtom{v: v, k: k, op: op}, nil
	}
	if neg || isOperator(p.token) || p.token == "(" || p.token == ")" {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	w := p.token
	p.scan()
	return intAtom{v: v, w: w, hasW: true, op: op}, nil
}
