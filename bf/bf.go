package bf

import (
	"fmt"
	"strconv"
	"strings"
)

// A Formula is any kind of constraint over boolean variables and bounded
// integer variables, not necessarily in CNF.
type Formula interface {
	nnf() Formula
	String() string
	Eval(model Model) bool
}

// The "true" constant.
type trueConst struct{}

// True is the constant denoting a tautology.
var True Formula = trueConst{}

func (t trueConst) nnf() Formula          { return t }
func (t trueConst) String() string        { return "⊤" }
func (t trueConst) Eval(model Model) bool { return true }

// The "false" constant.
type falseConst struct{}

// False is the constant denoting a contradiction.
var False Formula = falseConst{}

func (f falseConst) nnf() Formula          { return f }
func (f falseConst) String() string        { return "⊥" }
func (f falseConst) Eval(model Model) bool { return false }

// Var generates a named boolean variable in a formula.
func Var(name string) Formula {
	return variable{name: name}
}

type variable struct {
	name string
}

func (v variable) nnf() Formula {
	return lit{signed: false, v: v}
}

func (v variable) String() string {
	return v.name
}

func (v variable) Eval(model Model) bool {
	b, ok := model.Bool(v.name)
	if !ok {
		panic(fmt.Errorf("model lacks binding for variable %s", v.name))
	}
	return b
}

type lit struct {
	v      variable
	signed bool
}

func (l lit) nnf() Formula {
	return l
}

func (l lit) String() string {
	if l.signed {
		return "not(" + l.v.name + ")"
	}
	return l.v.name
}

func (l lit) Eval(model Model) bool {
	b := l.v.Eval(model)
	if l.signed {
		return !b
	}
	return b
}

// Not represents a negation. It negates the given subformula.
func Not(f Formula) Formula {
	return not{f}
}

type not [1]Formula

func (n not) nnf() Formula {
	switch f := n[0].(type) {
	case variable:
		l := f.nnf().(lit)
		l.signed = true
		return l
	case lit:
		f.signed = !f.signed
		return f
	case not:
		return f[0].nnf()
	case and:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = not{sub}.nnf()
		}
		return or(subs).nnf()
	case or:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = not{sub}.nnf()
		}
		return and(subs).nnf()
	case intAtom:
		return f.negated()
	case trueConst:
		return False
	case falseConst:
		return True
	default:
		panic("invalid formula type")
	}
}

func (n not) String() string {
	return "not(" + n[0].String() + ")"
}

func (n not) Eval(model Model) bool {
	return !n[0].Eval(model)
}

// And generates a conjunction of subformulas.
func And(subs ...Formula) Formula {
	return and(subs)
}

type and []Formula

func (a and) nnf() Formula {
	var res and
	for _, s := range a {
		nnf := s.nnf()
		switch nnf := nnf.(type) {
		case and: // Simplify: "and"s in the "and" get to the higher level
			res = append(res, nnf...)
		case trueConst: // True is ignored
		case falseConst:
			return False
		default:
			res = append(res, nnf)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	if len(res) == 0 {
		return True
	}
	return res
}

func (a and) String() string {
	strs := make([]string, len(a))
	for i, f := range a {
		strs[i] = f.String()
	}
	return "and(" + strings.Join(strs, ", ") + ")"
}

func (a and) Eval(model Model) (res bool) {
	for i, s := range a {
		b := s.Eval(model)
		if i == 0 {
			res = b
		} else {
			res = res && b
		}
	}
	return
}

// Or generates a disjunction of subformulas.
func Or(subs ...Formula) Formula {
	return or(subs)
}

type or []Formula

func (o or) nnf() Formula {
	var res or
	for _, s := range o {
		nnf := s.nnf()
		switch nnf := nnf.(type) {
		case or: // Simplify: "or"s in the "or" get to the higher level
			res = append(res, nnf...)
		case falseConst: // False is ignored
		case trueConst:
			return True
		default:
			res = append(res, nnf)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	if len(res) == 0 {
		return False
	}
	return res
}

func (o or) String() string {
	strs := make([]string, len(o))
	for i, f := range o {
		strs[i] = f.String()
	}
	return "or(" + strings.Join(strs, ", ") + ")"
}

func (o or) Eval(model Model) (res bool) {
	for i, s := range o {
		b := s.Eval(model)
		if i == 0 {
			res = b
		} else {
			res = res || b
		}
	}
	return
}

// Implies indicates a subformula implies another one.
func Implies(f1, f2 Formula) Formula {
	return or{not{f1}, f2}
}

// Eq indicates a subformula is equivalent to another one.
func Eq(f1, f2 Formula) Formula {
	return and{or{not{f1}, f2}, or{f1, not{f2}}}
}

// Xor indicates exactly one of the two given subformulas is true.
func Xor(f1, f2 Formula) Formula {
	return and{or{not{f1}, not{f2}}, or{f1, f2}}
}

type cmpOp uint8

const (
	opEq cmpOp = iota
	opNeq
	opLt
	opLe
	opGt
	opGe
)

var opStrings = [...]string{
	opEq:  "==",
	opNeq: "!=",
	opLt:  "<",
	opLe:  "<=",
	opGt:  ">",
	opGe:  ">=",
}

var opNegations = [...]cmpOp{
	opEq:  opNeq,
	opNeq: opEq,
	opLt:  opGe,
	opLe:  opGt,
	opGt:  opLe,
	opGe:  opLt,
}

// An intAtom compares an integer variable with either a constant or another
// integer variable. Atoms are closed under negation, so NNF conversion never
// needs to look inside them.
type intAtom struct {
	v    string // left-hand variable
	w    string // right-hand variable, used when hasW is set
	hasW bool
	k    int // right-hand constant, used when hasW is unset
	op   cmpOp
}

func (a intAtom) nnf() Formula { return a }

func (a intAtom) negated() intAtom {
	a.op = opNegations[a.op]
	return a
}

func (a intAtom) String() string {
	if a.hasW {
		return a.v + " " + opStrings[a.op] + " " + a.w
	}
	return a.v + " " + opStrings[a.op] + " " + strconv.Itoa(a.k)
}

func (a intAtom) Eval(model Model) bool {
	left, ok := model.Int(a.v)
	if !ok {
		panic(fmt.Errorf("model lacks binding for variable %s", a.v))
	}
	var right int
	if a.hasW {
		right, ok = model.Int(a.w)
		if !ok {
			panic(fmt.Errorf("model lacks binding for variable %s", a.w))
		}
	} else {
		right = a.k
	}
	switch a.op {
	case opEq:
		return left == right
	case opNeq:
		return left != right
	case opLt:
		return left < right
	case opLe:
		return left <= right
	case opGt:
		return left > right
	default:
		return left >= right
	}
}

// IntEq constrains the integer variable v to equal the constant k.
func IntEq(v string, k int) Formula { return intAtom{v: v, k: k, op: opEq} }

// IntNeq constrains the integer variable v to differ from the constant k.
func IntNeq(v string, k int) Formula { return intAtom{v: v, k: k, op: opNeq} }

// IntLt constrains the integer variable v to be less than the constant k.
func IntLt(v string, k int) Formula { return intAtom{v: v, k: k, op: opLt} }

// IntLe constrains the integer variable v to be at most the constant k.
func IntLe(v string, k int) Formula { return intAtom{v: v, k: k, op: opLe} }

// IntGt constrains the integer variable v to be greater than the constant k.
func IntGt(v string, k int) Formula { return intAtom{v: v, k: k, op: opGt} }

// IntGe constrains the integer variable v to be at least the constant k.
func IntGe(v string, k int) Formula { return intAtom{v: v, k: k, op: opGe} }

// IntEqVar constrains the integer variables a and b to be equal.
func IntEqVar(a, b string) Formula { return intAtom{v: a, w: b, hasW: true, op: opEq} }

// IntNeqVar constrains the integer variables a and b to differ.
func IntNeqVar(a, b string) Formula { return intAtom{v: a, w: b, hasW: true, op: opNeq} }

// IntLtVar constrains the integer variable a to be less than b.
func IntLtVar(a, b string) Formula { return intAtom{v: a, w: b, hasW: true, op: opLt} }

// IntLeVar constrains the integer variable a to be at most b.
func IntLeVar(a, b string) Formula { return intAtom{v: a, w: b, hasW: true, op: opLe} }

// IntGtVar constrains the integer variable a to be greater than b.
func IntGtVar(a, b string) Formula { return intAtom{v: a, w: b, hasW: true, op: opGt} }

// IntGeVar constrains the integer variable a to be at least b.
func IntGeVar(a, b string) Formula { return intAtom{v: a, w: b, hasW: true, op: opGe} }
