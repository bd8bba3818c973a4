package smt

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/wrldedit/gensmt/bf"
	"github.com/wrldedit/gensmt/logger"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Default integer domain. It covers the interval engine's default search
// horizon with room to spare; queries outside of it are unsatisfiable by
// construction.
const (
	DefaultDomainLo = -1024
	DefaultDomainHi = 1024
)

// Solver is an Oracle backed by the gini SAT solver. Formulas are compiled
// to CNF with integer variables order-encoded over a bounded domain. A fresh
// gini instance is created per query, so a Solver may be shared freely: no
// two call sites ever observe each other's constraints.
type Solver struct {
	lo, hi int
}

var _ Oracle = (*Solver)(nil)

// Option configures a Solver.
type Option func(*Solver)

// WithDomain sets the integer domain [lo, hi] used by the order encoding.
// Integer variables cannot take values outside this domain.
func WithDomain(lo, hi int) Option {
	return func(s *Solver) {
		s.lo = lo
		s.hi = hi
	}
}

// NewSolver returns a Solver with the default domain, modified by the given
// options.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{lo: DefaultDomainLo, hi: DefaultDomainHi}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsSatisfiable reports whether the formula has at least one model.
func (s *Solver) IsSatisfiable(f bf.Formula) (bool, error) {
	m, err := s.Model(f)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// IsUnsatisfiable reports whether the formula has no model.
func (s *Solver) IsUnsatisfiable(f bf.Formula) (bool, error) {
	sat, err := s.IsSatisfiable(f)
	if err != nil {
		return false, err
	}
	return !sat, nil
}

// Model returns one satisfying assignment of the formula, or nil if the
// formula is unsatisfiable.
func (s *Solver) Model(f bf.Formula) (*bf.Model, error) {
	p, err := bf.Compile(f, s.lo, s.hi)
	if err != nil {
		return nil, errors.Wrap(err, "compiling query")
	}
	log := logger.Logger()
	log.Debug().
		Int("vars", p.NbVars).
		Int("aux", p.NbAux()).
		Int("clauses", len(p.Clauses)).
		Msg("oracle query")
	g := gini.New()
	for _, clause := range p.Clauses {
		for _, lit := range clause {
			g.Add(z.Dimacs2Lit(lit))
		}
		g.Add(z.LitNull)
	}
	switch g.Solve() {
	case satisfiable:
		m := p.Decode(func(idx int) bool {
			return g.Value(z.Dimacs2Lit(idx))
		})
		return &m, nil
	case unsatisfiable:
		return nil, nil
	}
	// gini's blocking Solve only returns sat or unsat; anything else means
	// the session is unusable.
	return nil, errors.Wrap(ErrUnavailable, "solver returned unknown")
}
