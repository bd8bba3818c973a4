package bf

import (
	"fmt"
	"strconv"

	"github.com/bits-and-blooms/bitset"
)

// A CNFProblem is the representation of a formula as a conjunction of
// disjunctions of literals, identified by DIMACS integers. Integer variables
// are order-encoded over the domain [Lo, Hi]: one boolean literal per value c
// stands for "v <= c", chained by channeling clauses. The clauses can be fed
// to any SAT solver; Decode maps an assignment back to the original
// variables.
type CNFProblem struct {
	Clauses [][]int
	NbVars  int
	Lo, Hi  int

	bools map[string]int   // boolean problem variable -> DIMACS index
	order map[string][]int // integer variable -> indices of (v <= Lo+i)
	aux   *bitset.BitSet   // Tseitin and order literals, not decoded directly
}

// ordName is the reserved name of the order literal "v <= c". The parser
// cannot produce the "≤" rune inside an identifier, so clashes with problem
// variables are not possible.
func ordName(v string, c int) string {
	return v + "≤" + strconv.Itoa(c)
}

// Compile converts the formula to CNF, bounding every integer variable to
// the domain [lo, hi]. Values outside the domain are unsatisfiable by
// construction. A name used both as a boolean and as an integer variable is
// a sort error.
func Compile(f Formula, lo, hi int) (*CNFProblem, error) {
	if lo >= hi {
		return nil, fmt.Errorf("invalid integer domain [%d, %d]", lo, hi)
	}
	bools, ints := Vars(f)
	bset := make(map[string]struct{}, len(bools))
	for _, name := range bools {
		bset[name] = struct{}{}
	}
	for _, name := range ints {
		if _, ok := bset[name]; ok {
			return nil, fmt.Errorf("variable %q used both as boolean and as integer", name)
		}
	}
	conj := []Formula{desugar(f, lo, hi)}
	for _, v := range ints {
		for c := lo; c < hi-1; c++ {
			conj = append(conj, Or(Not(Var(ordName(v, c))), Var(ordName(v, c+1))))
		}
	}
	vs := &varIndex{all: make(map[string]int), aux: bitset.New(64)}
	clauses := cnfRec(And(conj...).nnf(), vs)
	p := &CNFProblem{
		Clauses: clauses,
		NbVars:  vs.nb,
		Lo:      lo,
		Hi:      hi,
		bools:   make(map[string]int, len(bools)),
		order:   make(map[string][]int, len(ints)),
		aux:     vs.aux,
	}
	for _, v := range ints {
		idxs := make([]int, hi-lo)
		for i := range idxs {
			idx := vs.all[ordName(v, lo+i)]
			idxs[i] = idx
			if idx > 0 {
				vs.aux.Set(uint(idx))
			}
		}
		p.order[v] = idxs
	}
	for name, idx := range vs.all {
		if !vs.aux.Test(uint(idx)) {
			p.bools[name] = idx
		}
	}
	return p, nil
}

// NbAux returns the number of literals introduced by the translation on top
// of the problem variables.
func (p *CNFProblem) NbAux() int {
	return int(p.aux.Count())
}

// Decode maps a satisfying assignment, queried through value by DIMACS
// index, back to a model over the original variables. An integer variable
// takes the smallest value c whose order literal "v <= c" is true.
func (p *CNFProblem) Decode(value func(idx int) bool) Model {
	bools := make(map[string]bool, len(p.bools))
	ints := make(map[string]int, len(p.order))
	for name, idx := range p.bools {
		bools[name] = value(idx)
	}
	for name, idxs := range p.order {
		val := p.Hi
		for i, idx := range idxs {
			if idx > 0 && value(idx) {
				val = p.Lo + i
				break
			}
		}
		ints[name] = val
	}
	return Model{bools: bools, ints: ints}
}

// desugar rewrites every integer atom into a boolean formula over order
// literals, leaving the rest of the tree untouched.
func desugar(f Formula, lo, hi int) Formula {
	switch f := f.(type) {
	case intAtom:
		return f.expand(lo, hi)
	case not:
		return Not(desugar(f[0], lo, hi))
	case and:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = desugar(sub, lo, hi)
		}
		return And(subs...)
	case or:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = desugar(sub, lo, hi)
		}
		return Or(subs...)
	default:
		return f
	}
}

func (a intAtom) expand(lo, hi int) Formula {
	if a.hasW {
		switch a.op {
		case opLt:
			return ltVar(a.v, a.w, lo, hi)
		case opGt:
			return ltVar(a.w, a.v, lo, hi)
		case opLe:
			return Not(ltVar(a.w, a.v, lo, hi))
		case opGe:
			return Not(ltVar(a.v, a.w, lo, hi))
		case opEq:
			return And(Not(ltVar(a.v, a.w, lo, hi)), Not(ltVar(a.w, a.v, lo, hi)))
		default: // opNeq
			return Or(ltVar(a.v, a.w, lo, hi), ltVar(a.w, a.v, lo, hi))
		}
	}
	switch a.op {
	case opLe:
		return leConst(a.v, a.k, lo, hi)
	case opLt:
		return leConst(a.v, a.k-1, lo, hi)
	case opGe:
		return Not(leConst(a.v, a.k-1, lo, hi))
	case opGt:
		return Not(leConst(a.v, a.k, lo, hi))
	case opEq:
		return eqConst(a.v, a.k, lo, hi)
	default: // opNeq
		return Not(eqConst(a.v, a.k, lo, hi))
	}
}

// leConst encodes "v <= k" over the domain [lo, hi].
func leConst(v string, k, lo, hi int) Formula {
	if k >= hi {
		return True
	}
	if k < lo {
		return False
	}
	return Var(ordName(v, k))
}

// eqConst encodes "v = k" as "v <= k and not(v <= k-1)".
func eqConst(v string, k, lo, hi int) Formula {
	if k < lo || k > hi {
		return False
	}
	return And(leConst(v, k, lo, hi), Not(leConst(v, k-1, lo, hi)))
}

// ltVar encodes "x < y" as the disjunction over every cut point c of
// "x <= c and not(y <= c)".
func ltVar(x, y string, lo, hi int) Formula {
	subs := make([]Formula, 0, hi-lo)
	for c := lo; c < hi; c++ {
		subs = append(subs, And(Var(ordName(x, c)), Not(Var(ordName(y, c)))))
	}
	return Or(subs...)
}

// varIndex associates variable names with DIMACS indices.
type varIndex struct {
	all map[string]int
	aux *bitset.BitSet
	nb  int
}

// litValue returns the DIMACS value associated with the given literal.
// If the variable was not referenced yet, it is created first.
func (vs *varIndex) litValue(l lit) int {
	val, ok := vs.all[l.v.name]
	if !ok {
		vs.nb++
		val = vs.nb
		vs.all[l.v.name] = val
	}
	if l.signed {
		return -val
	}
	return val
}

// dummy creates a Tseitin variable and returns its associated index.
func (vs *varIndex) dummy() int {
	vs.nb++
	vs.aux.Set(uint(vs.nb))
	return vs.nb
}

// cnfRec transforms the NNF formula f into a CNF clause set, introducing
// Tseitin variables for conjunctions nested under disjunctions.
func cnfRec(f Formula, vs *varIndex) [][]int {
	switch f := f.(type) {
	case lit:
		return [][]int{{vs.litValue(f)}}
	case and:
		var res [][]int
		for _, sub := range f {
			res = append(res, cnfRec(sub, vs)...)
		}
		return res
	case or:
		var res [][]int
		var lits []int
		for _, sub := range f {
			switch sub := sub.(type) {
			case lit:
				lits = append(lits, vs.litValue(sub))
			case and:
				d := vs.dummy()
				lits = append(lits, d)
				for _, sub2 := range sub {
					cnf := cnfRec(sub2, vs)
					// The last row is the clause asserting sub2; earlier
					// rows, if any, define nested Tseitin variables and
					// hold unconditionally.
					cnf[len(cnf)-1] = append(cnf[len(cnf)-1], -d)
					res = append(res, cnf...)
				}
			default:
				panic("unexpected or in or")
			}
		}
		res = append(res, lits)
		return res
	case trueConst: // True clauses are ignored
		return [][]int{}
	case falseConst:
		return [][]int{{}}
	default:
		panic("invalid NNF formula")
	}
}
