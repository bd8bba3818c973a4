// Package smt defines the satisfiability oracle consumed by the analysis
// engines, and a default implementation backed by the gini SAT solver.
//
// The engines never solve constraints themselves: every decision is one
// oracle query over a self-contained formula. Queries carry no shared solver
// state, so two queries are always independent of each other.
package smt

import (
	"github.com/pkg/errors"

	"github.com/wrldedit/gensmt/bf"
)

// ErrUnavailable is wrapped by oracle implementations when a query could not
// be run at all, as opposed to a query that ran and came back UNSAT.
var ErrUnavailable = errors.New("oracle unavailable")

// Oracle answers satisfiability queries about formulas. Implementations must
// treat every call as an isolated query: no constraint or learned state may
// leak from one call into the next.
//
// Evaluating a term against a model is done directly on the returned
// bf.Model, via bf.Formula's Eval and the model's Bool and Int accessors.
type Oracle interface {
	// IsSatisfiable reports whether the formula has at least one model.
	IsSatisfiable(f bf.Formula) (bool, error)
	// IsUnsatisfiable reports whether the formula has no model. It is the
	// logical complement of IsSatisfiable, kept distinct for call-site
	// clarity.
	IsUnsatisfiable(f bf.Formula) (bool, error)
	// Model returns one satisfying assignment of the formula, or nil if
	// the formula is unsatisfiable.
	Model(f bf.Formula) (*bf.Model, error)
}
