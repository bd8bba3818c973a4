// Package invariant defines candidate invariants over a formula's solution
// space and the negation-test verifier that proves or refutes them.
//
// A candidate describes one conjectured property of every satisfying
// assignment: a fixed integer value, a boolean polarity, or an integer
// interval. The verifier conjoins the original formula with the candidate's
// negation and asks the oracle: an unsatisfiable conjunction proves the
// candidate holds universally, a satisfiable one yields a counterexample.
package invariant

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wrldedit/gensmt/bf"
	"github.com/wrldedit/gensmt/smt"
)

// Kind discriminates the candidate variants. The zero Kind is invalid so
// that an uninitialized Candidate cannot masquerade as a real one.
type Kind uint8

const (
	// KindFixed conjectures that an integer variable always takes one value.
	KindFixed Kind = iota + 1
	// KindPolarity conjectures that a boolean variable always takes one
	// polarity.
	KindPolarity
	// KindInterval conjectures that an integer variable always lies in a
	// closed interval.
	KindInterval
)

// A Candidate is one conjectured property of all solutions of a formula.
// Candidates are immutable: they are created by a discovery engine or a
// caller, verified once, then discarded.
type Candidate struct {
	kind     Kind
	variable string
	value    int  // KindFixed
	polarity bool // KindPolarity
	lo, hi   int  // KindInterval
}

// Fixed returns the candidate "v always equals k".
func Fixed(v string, k int) Candidate {
	return Candidate{kind: KindFixed, variable: v, value: k}
}

// Always returns the candidate "v is always true" or "v is always false".
func Always(v string, polarity bool) Candidate {
	return Candidate{kind: KindPolarity, variable: v, polarity: polarity}
}

// InRange returns the candidate "v always lies in [lo, hi]".
// It fails when lo > hi.
func InRange(v string, lo, hi int) (Candidate, error) {
	if lo > hi {
		return Candidate{}, errors.Errorf("invalid interval [%d, %d] for %q", lo, hi, v)
	}
	return Candidate{kind: KindInterval, variable: v, lo: lo, hi: hi}, nil
}

// Kind returns the candidate's variant.
func (c Candidate) Kind() Kind { return c.kind }

// Variable returns the name of the variable the candidate is about.
func (c Candidate) Variable() string { return c.variable }

// Negation returns the formula satisfied exactly by the assignments
// violating the candidate.
func (c Candidate) Negation() (bf.Formula, error) {
	switch c.kind {
	case KindFixed:
		return bf.IntNeq(c.variable, c.value), nil
	case KindPolarity:
		if c.polarity {
			return bf.Not(bf.Var(c.variable)), nil
		}
		return bf.Var(c.variable), nil
	case KindInterval:
		return bf.Or(bf.IntLt(c.variable, c.lo), bf.IntGt(c.variable, c.hi)), nil
	default:
		return nil, errors.Errorf("malformed candidate for %q", c.variable)
	}
}

func (c Candidate) String() string {
	switch c.kind {
	case KindFixed:
		return fmt.Sprintf("%s = %d", c.variable, c.value)
	case KindPolarity:
		return fmt.Sprintf("%s is always %t", c.variable, c.polarity)
	case KindInterval:
		return fmt.Sprintf("%s in [%d, %d]", c.variable, c.lo, c.hi)
	default:
		return "malformed candidate"
	}
}

// Status is the outcome of a verification.
type Status uint8

const (
	// Holds means the candidate is true of every satisfying assignment.
	Holds Status = iota + 1
	// Violated means at least one satisfying assignment breaks the
	// candidate.
	Violated
)

func (s Status) String() string {
	switch s {
	case Holds:
		return "HOLDS"
	case Violated:
		return "VIOLATED"
	default:
		return "UNKNOWN"
	}
}

// Result carries the verification outcome. Counterexample is non-nil only
// when the status is Violated; it is a model of the original formula that
// falsifies the candidate.
type Result struct {
	Status         Status
	Counterexample *bf.Model
}

// Verify proves or refutes the candidate against the full formula by the
// negation test: the conjunction of the formula and the candidate's negation
// is unsatisfiable if and only if the candidate holds for every model. An
// oracle failure is reported as an error, never as a refutation.
func Verify(o smt.Oracle, f bf.Formula, c Candidate) (Result, error) {
	neg, err := c.Negation()
	if err != nil {
		return Result{}, err
	}
	m, err := o.Model(bf.And(f, neg))
	if err != nil {
		return Result{}, errors.Wrapf(err, "verifying %s", c)
	}
	if m == nil {
		return Result{Status: Holds}, nil
	}
	return Result{Status: Violated, Counterexample: m}, nil
}
