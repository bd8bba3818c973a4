// Package relations discovers boolean facts that hold across every
// satisfying assignment of a formula: variables fixed to one polarity, and
// implications between pairs of variables.
//
// Two strategies share the same output shape. The direct-query strategy
// proves each fact by one unsatisfiability query and is sound. The
// model-sampling strategy inspects a capped number of models obtained with
// blocking clauses; its facts are conjectures unless the sample happens to
// be exhaustive, and every report says which of the two cases applies.
package relations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	"github.com/wrldedit/gensmt/bf"
	"github.com/wrldedit/gensmt/logger"
	"github.com/wrldedit/gensmt/smt"
)

// Strategy selects the discovery algorithm.
type Strategy uint8

const (
	// DirectQuery proves every fact with an unsatisfiability query:
	// O(n) queries for fixed values, O(n²) for pairwise implications.
	DirectQuery Strategy = iota + 1
	// ModelSampling inspects up to a capped number of models and keeps the
	// facts on which all of them agree.
	ModelSampling
)

func (s Strategy) String() string {
	switch s {
	case DirectQuery:
		return "direct-query"
	case ModelSampling:
		return "model-sampling"
	default:
		return "unknown"
	}
}

// Kind discriminates relation facts.
type Kind uint8

const (
	// AlwaysTrue means the variable is true in every model.
	AlwaysTrue Kind = iota + 1
	// AlwaysFalse means the variable is false in every model.
	AlwaysFalse
	// Implication means every model with Var true has Other equal to
	// Implied.
	Implication
)

// A Relation is one discovered fact, carrying the strategy that produced it
// as provenance: direct-query facts are proven, model-sampling facts are
// sample-bounded.
type Relation struct {
	Kind     Kind
	Var      string
	Other    string // implication target, empty for unary facts
	Implied  bool   // polarity implied for Other
	Strategy Strategy
}

func (r Relation) String() string {
	switch r.Kind {
	case AlwaysTrue:
		return r.Var + " is always true"
	case AlwaysFalse:
		return r.Var + " is always false"
	case Implication:
		return fmt.Sprintf("%s = true implies %s = %t", r.Var, r.Other, r.Implied)
	default:
		return "unknown relation"
	}
}

// State qualifies a whole report.
type State uint8

const (
	// OK means the analysis ran over at least one variable.
	OK State = iota + 1
	// NoVariables means no applicable variable was found; the report is
	// empty but the analysis did not fail.
	NoVariables
	// NoSolution means the base formula itself is unsatisfiable, so no
	// generalization is meaningful.
	NoSolution
)

// Report is the aggregated output of one discovery run.
type Report struct {
	State     State
	Strategy  Strategy
	Relations []Relation
	// Failed records variables whose queries could not be run; one bad
	// variable does not abort the rest of the batch.
	Failed map[string]error
	// ModelsExamined is the number of models drawn by the sampling
	// strategy.
	ModelsExamined int
	// Exhaustive is set when the sampler drained every model of the
	// formula before hitting its cap. In that case the sampled facts are
	// sound; otherwise they are conjectures.
	Exhaustive bool
}

// String renders the report, one finding per line. Output order is
// deterministic.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("Boolean relations (" + r.Strategy.String() + "):\n")
	switch r.State {
	case NoSolution:
		b.WriteString("  no solution exists\n")
	case NoVariables:
		b.WriteString("  no applicable variables\n")
	default:
		if len(r.Relations) == 0 {
			b.WriteString("  none found\n")
		}
		for _, rel := range r.Relations {
			b.WriteString("  " + rel.String() + "\n")
		}
		if r.Strategy == ModelSampling {
			if r.Exhaustive {
				fmt.Fprintf(&b, "  (all %d models examined: facts are exact)\n", r.ModelsExamined)
			} else {
				fmt.Fprintf(&b, "  (conjectures from %d sampled models)\n", r.ModelsExamined)
			}
		}
	}
	names := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: unresolved (%v)\n", name, r.Failed[name])
	}
	return b.String()
}

// DefaultSampleCap bounds the number of models the sampling strategy draws.
// The cap trades query cost against the risk of reporting a fact some
// unsampled model violates.
const DefaultSampleCap = 10

type config struct {
	sampleCap int
}

// Option configures a discovery run.
type Option func(*config)

// WithSampleCap overrides the sampling strategy's model cap.
func WithSampleCap(k int) Option {
	return func(c *config) {
		if k > 0 {
			c.sampleCap = k
		}
	}
}

// Discover analyzes the boolean variables of the formula and returns the
// relations that hold across its solution space. When vars is nil the
// boolean variables are collected from the formula itself. Variables are
// processed in lexicographic order so reports are reproducible.
func Discover(o smt.Oracle, f bf.Formula, vars []string, strat Strategy, opts ...Option) (Report, error) {
	cfg := config{sampleCap: DefaultSampleCap}
	for _, opt := range opts {
		opt(&cfg)
	}
	if vars == nil {
		vars, _ = bf.Vars(f)
	} else {
		vars = dedupSorted(vars)
	}
	if len(vars) == 0 {
		return Report{State: NoVariables, Strategy: strat}, nil
	}
	switch strat {
	case DirectQuery:
		return discoverDirect(o, f, vars)
	case ModelSampling:
		return discoverSampling(o, f, vars, cfg.sampleCap)
	default:
		return Report{}, errors.Errorf("unknown strategy %d", strat)
	}
}

func dedupSorted(vars []string) []string {
	out := append([]string(nil), vars...)
	sort.Strings(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

func discoverDirect(o smt.Oracle, f bf.Formula, vars []string) (Report, error) {
	report := Report{State: OK, Strategy: DirectQuery, Failed: map[string]error{}}
	sat, err := o.IsSatisfiable(f)
	if err != nil {
		return Report{}, errors.Wrap(err, "checking base formula")
	}
	if !sat {
		return Report{State: NoSolution, Strategy: DirectQuery}, nil
	}
	log := logger.Logger()

	alwaysFalse := make(map[string]bool)
	for _, v := range vars {
		mustBeTrue, err := o.IsUnsatisfiable(bf.And(f, bf.Not(bf.Var(v))))
		if err != nil {
			report.Failed[v] = err
			continue
		}
		if mustBeTrue {
			report.Relations = append(report.Relations, Relation{
				Kind: AlwaysTrue, Var: v, Strategy: DirectQuery,
			})
			continue
		}
		mustBeFalse, err := o.IsUnsatisfiable(bf.And(f, bf.Var(v)))
		if err != nil {
			report.Failed[v] = err
			continue
		}
		if mustBeFalse {
			alwaysFalse[v] = true
			report.Relations = append(report.Relations, Relation{
				Kind: AlwaysFalse, Var: v, Strategy: DirectQuery,
			})
		}
	}

	for _, v1 := range vars {
		if alwaysFalse[v1] {
			// Any implication from an always-false antecedent is vacuous.
			continue
		}
		if _, bad := report.Failed[v1]; bad {
			continue
		}
		for _, v2 := range vars {
			if v1 == v2 {
				continue
			}
			if _, bad := report.Failed[v2]; bad {
				continue
			}
			impliesTrue, err := o.IsUnsatisfiable(bf.And(f, bf.Var(v1), bf.Not(bf.Var(v2))))
			if err != nil {
				report.Failed[v1] = err
				break
			}
			if impliesTrue {
				report.Relations = append(report.Relations, Relation{
					Kind: Implication, Var: v1, Other: v2, Implied: true, Strategy: DirectQuery,
				})
			}
			impliesFalse, err := o.IsUnsatisfiable(bf.And(f, bf.Var(v1), bf.Var(v2)))
			if err != nil {
				report.Failed[v1] = err
				break
			}
			if impliesFalse {
				report.Relations = append(report.Relations, Relation{
					Kind: Implication, Var: v1, Other: v2, Implied: false, Strategy: DirectQuery,
				})
			}
		}
	}
	log.Debug().Int("variables", len(vars)).Int("relations", len(report.Relations)).
		Msg("direct-query analysis done")
	return report, nil
}

func discoverSampling(o smt.Oracle, f bf.Formula, vars []string, sampleCap int) (Report, error) {
	report := Report{State: OK, Strategy: ModelSampling, Failed: map[string]error{}}
	log := logger.Logger()

	// Each sample is stored as a bitset over the supported variables, in
	// sorted order.
	var support []string
	var samples []*bitset.BitSet
	query := f
	for len(samples) < sampleCap {
		m, err := o.Model(query)
		if err != nil {
			return Report{}, errors.Wrap(err, "sampling models")
		}
		if m == nil {
			if len(samples) == 0 {
				return Report{State: NoSolution, Strategy: ModelSampling}, nil
			}
			report.Exhaustive = true
			break
		}
		if support == nil {
			// Variables absent from the model's support are
			// unconstrained: they are excluded from all reporting.
			for _, v := range vars {
				if _, ok := m.Bool(v); ok {
					support = append(support, v)
				}
			}
			if len(support) == 0 {
				report.ModelsExamined = 1
				return report, nil
			}
		}
		bs := bitset.New(uint(len(support)))
		blocking := make([]bf.Formula, len(support))
		for i, v := range support {
			val, _ := m.Bool(v)
			if val {
				bs.Set(uint(i))
				blocking[i] = bf.Not(bf.Var(v))
			} else {
				blocking[i] = bf.Var(v)
			}
		}
		samples = append(samples, bs)
		query = bf.And(query, bf.Or(blocking...))
	}
	report.ModelsExamined = len(samples)
	log.Debug().Int("models", len(samples)).Bool("exhaustive", report.Exhaustive).
		Msg("model sampling done")

	everTrue := make([]bool, len(support))
	for i := range support {
		allTrue, allFalse := true, true
		for _, bs := range samples {
			if bs.Test(uint(i)) {
				allFalse = false
				everTrue[i] = true
			} else {
				allTrue = false
			}
		}
		switch {
		case allTrue:
			report.Relations = append(report.Relations, Relation{
				Kind: AlwaysTrue, Var: support[i], Strategy: ModelSampling,
			})
		case allFalse:
			report.Relations = append(report.Relations, Relation{
				Kind: AlwaysFalse, Var: support[i], Strategy: ModelSampling,
			})
		}
	}

	for i, v1 := range support {
		if !everTrue[i] {
			// v1 never true in the sample: implications from it would be
			// vacuous.
			continue
		}
		for j, v2 := range support {
			if i == j {
				continue
			}
			impliesTrue, impliesFalse := true, true
			for _, bs := range samples {
				if !bs.Test(uint(i)) {
					continue
				}
				if bs.Test(uint(j)) {
					impliesFalse = false
				} else {
					impliesTrue = false
				}
			}
			if impliesTrue {
				report.Relations = append(report.Relations, Relation{
					Kind: Implication, Var: v1, Other: v2, Implied: true, Strategy: ModelSampling,
				})
			}
			if impliesFalse {
				report.Relations = append(report.Relations, Relation{
					Kind: Implication, Var: v1, Other: v2, Implied: false, Strategy: ModelSampling,
				})
			}
		}
	}
	return report, nil
}
