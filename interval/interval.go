// Package interval discovers, for each integer variable of a formula, the
// range of values for which the formula stays satisfiable when every other
// variable is pinned to the value it takes in one reference model.
//
// Two strategies share the same output shape: a linear scan outward from the
// reference value, and an exponential bracket expansion followed by binary
// search. Both are exact only when the satisfiable value set of the free
// variable is one contiguous interval; when it is disconnected the reported
// range can be a convex superset. The optional gap probe samples interior
// points to flag that case instead of silently hiding it.
package interval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/wrldedit/gensmt/bf"
	"github.com/wrldedit/gensmt/logger"
	"github.com/wrldedit/gensmt/smt"
)

// Strategy selects the boundary-search algorithm.
type Strategy uint8

const (
	// LinearScan walks away from the reference value one step at a time,
	// up to the search horizon.
	LinearScan Strategy = iota + 1
	// Bracket expands a step size exponentially until both directions go
	// unsatisfiable, then bisects for the exact boundaries.
	Bracket
)

func (s Strategy) String() string {
	switch s {
	case LinearScan:
		return "linear-scan"
	case Bracket:
		return "bracket"
	default:
		return "unknown"
	}
}

// A Bound is the discovered closed interval for one variable. An end with
// Exact unset hit the search horizon while still satisfiable: the true bound
// lies at or beyond it, and it must not be read as proven.
type Bound struct {
	Lower, Upper           int
	LowerExact, UpperExact bool
	// GapSuspected is set by the gap probe when an interior point of the
	// interval is unsatisfiable, i.e. the satisfiable set is not
	// contiguous and the interval is only a convex superset.
	GapSuspected bool
}

func (b Bound) String() string {
	lo := fmt.Sprintf("%d", b.Lower)
	if !b.LowerExact {
		lo = "<=" + lo
	}
	hi := fmt.Sprintf("%d", b.Upper)
	if !b.UpperExact {
		hi = ">=" + hi
	}
	s := "[" + lo + ", " + hi + "]"
	if b.GapSuspected {
		s += " (gap suspected)"
	}
	return s
}

// State qualifies a whole report.
type State uint8

const (
	// OK means the analysis ran over at least one variable.
	OK State = iota + 1
	// NoVariables means no applicable variable was found.
	NoVariables
	// NoSolution means the base formula itself is unsatisfiable.
	NoSolution
)

// Report is the aggregated output of one discovery run.
type Report struct {
	State    State
	Strategy Strategy
	Bounds   map[string]Bound
	// Failed records variables whose search could not run; one bad
	// variable does not abort the rest of the batch.
	Failed map[string]error
	// Reference is the model used to pin the other variables. Bounds are
	// only meaningful relative to it.
	Reference *bf.Model
}

// String renders the report, one variable per line in lexicographic order.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("Integer bounds (" + r.Strategy.String() + "):\n")
	switch r.State {
	case NoSolution:
		b.WriteString("  no solution exists\n")
	case NoVariables:
		b.WriteString("  no applicable variables\n")
	default:
		names := make([]string, 0, len(r.Bounds))
		for name := range r.Bounds {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) == 0 {
			b.WriteString("  none found\n")
		}
		for _, name := range names {
			fmt.Fprintf(&b, "  %s in %s\n", name, r.Bounds[name])
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

// Defaults for the search parameters.
const (
	DefaultHorizon     = 1000
	DefaultInitialStep = 100
)

type config struct {
	horizon     int
	initialStep int
	gapProbe    int
}

// Option configures a discovery run.
type Option func(*config)

// WithHorizon bounds how far the search may move away from the reference
// value. A side still satisfiable at the horizon is reported as approximate.
func WithHorizon(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.horizon = n
		}
	}
}

// WithInitialStep sets the bracket strategy's first expansion step.
func WithInitialStep(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.initialStep = n
		}
	}
}

// WithGapProbe samples n interior points of every exact interval and flags
// the bound when one of them is unsatisfiable, catching disconnected value
// sets that both strategies would otherwise paper over.
func WithGapProbe(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.gapProbe = n
		}
	}
}

// Discover finds, per integer variable, the satisfiable range around one
// reference model of the formula. When vars is nil the integer variables are
// collected from the formula itself. Variables are processed in
// lexicographic order so reports are reproducible.
func Discover(o smt.Oracle, f bf.Formula, vars []string, strat Strategy, opts ...Option) (Report, error) {
	cfg := config{horizon: DefaultHorizon, initialStep: DefaultInitialStep}
	for _, opt := range opts {
		opt(&cfg)
	}
	if strat != LinearScan && strat != Bracket {
		return Report{}, errors.Errorf("unknown strategy %d", strat)
	}
	if vars == nil {
		_, vars = bf.Vars(f)
	} else {
		vars = dedupSorted(vars)
	}
	if len(vars) == 0 {
		return Report{State: NoVariables, Strategy: strat}, nil
	}
	ref, err := o.Model(f)
	if err != nil {
		return Report{}, errors.Wrap(err, "solving base formula")
	}
	if ref == nil {
		return Report{State: NoSolution, Strategy: strat}, nil
	}
	report := Report{
		State:     OK,
		Strategy:  strat,
		Bounds:    make(map[string]Bound, len(vars)),
		Failed:    map[string]error{},
		Reference: ref,
	}
	log := logger.Logger()
	for _, v := range vars {
		start, ok := ref.Int(v)
		if !ok {
			report.Failed[v] = errors.Errorf("no integer binding for %q in reference model", v)
			continue
		}
		search := &search{
			oracle:  o,
			formula: pinOthers(f, ref, v),
			v:       v,
			cfg:     cfg,
		}
		var bound Bound
		if strat == LinearScan {
			bound, err = search.linearScan(start)
		} else {
			bound, err = search.bracket(start)
		}
		if err != nil {
			report.Failed[v] = err
			continue
		}
		if cfg.gapProbe > 0 && bound.LowerExact && bound.UpperExact {
			bound.GapSuspected, err = search.probeGaps(bound)
			if err != nil {
				report.Failed[v] = err
				continue
			}
		}
		log.Debug().Str("variable", v).Stringer("bound", bound).Msg("interval found")
		report.Bounds[v] = bound
	}
	return report, nil
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

// pinOthers conjoins the formula with equality constraints fixing every
// variable bound by the reference model, except the one under study, which
// stays free.
func pinOthers(f bf.Formula, ref *bf.Model, free string) bf.Formula {
	conj := []bf.Formula{f}
	for _, v := range ref.IntVars() {
		if v == free {
			continue
		}
		val, _ := ref.Int(v)
		conj = append(conj, bf.IntEq(v, val))
	}
	for _, v := range ref.BoolVars() {
		val, _ := ref.Bool(v)
		if val {
			conj = append(conj, bf.Var(v))
		} else {
			conj = append(conj, bf.Not(bf.Var(v)))
		}
	}
	return bf.And(conj...)
}

type search struct {
	oracle  smt.Oracle
	formula bf.Formula
	v       string
	cfg     config
}

// satAt issues one oracle query asking whether the pinned formula is
// satisfiable with the free variable equal to value.
func (s *search) satAt(value int) (bool, error) {
	return s.oracle.IsSatisfiable(bf.And(s.formula, bf.IntEq(s.v, value)))
}

// linearScan walks down then up from the reference value one step at a time.
// The last satisfiable value before an unsatisfiable one is the exact bound;
// a walk that exhausts the horizon yields an approximate bound.
func (s *search) linearScan(start int) (Bound, error) {
	var bound Bound
	cur := start
	for cur > start-s.cfg.horizon {
		sat, err := s.satAt(cur - 1)
		if err != nil {
			return Bound{}, err
		}
		if !sat {
			break
		}
		cur--
	}
	bound.Lower = cur
	bound.LowerExact = cur > start-s.cfg.horizon

	cur = start
	for cur < start+s.cfg.horizon {
		sat, err := s.satAt(cur + 1)
		if err != nil {
			return Bound{}, err
		}
		if !sat {
			break
		}
		cur++
	}
	bound.Upper = cur
	bound.UpperExact = cur < start+s.cfg.horizon
	return bound, nil
}

// bracket doubles a step outward from the reference value until both
// directions are unsatisfiable, then bisects each side for the exact
// boundary. The expansion is clamped so the step can never wrap around the
// integer range; an end clamped at the limit while still satisfiable is
// reported approximate.
func (s *search) bracket(start int) (Bound, error) {
	lower, lowerBracketed, err := s.expand(start, -1)
	if err != nil {
		return Bound{}, err
	}
	upper, upperBracketed, err := s.expand(start, +1)
	if err != nil {
		return Bound{}, err
	}

	var bound Bound
	if !lowerBracketed {
		// Clamped while still satisfiable: the true bound lies at or
		// below this point.
		bound.Lower = lower
		bound.LowerExact = false
	} else {
		// lower is UNSAT, start is SAT: bisect for the least satisfiable
		// value.
		lo, hi := lower, start
		for lo < hi {
			mid := lo + (hi-lo)/2
			sat, err := s.satAt(mid)
			if err != nil {
				return Bound{}, err
			}
			if sat {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		bound.Lower = lo
		bound.LowerExact = true
	}
	if !upperBracketed {
		bound.Upper = upper
		bound.UpperExact = false
	} else {
		// start is SAT, upper is UNSAT: bisect for the greatest
		// satisfiable value.
		lo, hi := start, upper
		for lo < hi {
			mid := lo + (hi-lo+1)/2
			sat, err := s.satAt(mid)
			if err != nil {
				return Bound{}, err
			}
			if sat {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		bound.Upper = lo
		bound.UpperExact = true
	}
	return bound, nil
}

// expand doubles a step outward from the reference value in the given
// direction until it finds an unsatisfiable point, which brackets the
// boundary for bisection. The step is clamped so it can never wrap around
// the integer range; a point clamped at the limit while still satisfiable is
// returned with bracketed unset.
func (s *search) expand(start, dir int) (point int, bracketed bool, err error) {
	// The limit keeps start±limit well inside the representable range no
	// matter how the doubling rounds.
	const limit = int(^uint(0)>>1) / 4

	step := s.cfg.initialStep
	cur := start + dir*step
	for {
		sat, err := s.satAt(cur)
		if err != nil {
			return 0, false, err
		}
		if !sat {
			return cur, true, nil
		}
		if dir < 0 && cur <= start-limit || dir > 0 && cur >= start+limit {
			return cur, false, nil
		}
		if step <= limit/2 {
			step *= 2
		}
		if dir < 0 {
			cur = clampSub(cur, step, start-limit)
		} else {
			cur = clampAdd(cur, step, start+limit)
		}
	}
}

// probeGaps samples evenly spaced interior points of the interval and
// reports whether any of them is unsatisfiable.
func (s *search) probeGaps(b Bound) (bool, error) {
	width := b.Upper - b.Lower
	if width <= 1 {
		return false, nil
	}
	n := s.cfg.gapProbe
	if n > width-1 {
		n = width - 1
	}
	for i := 1; i <= n; i++ {
		point := b.Lower + width*i/(n+1)
		if point <= b.Lower || point >= b.Upper {
			continue
		}
		sat, err := s.satAt(point)
		if err != nil {
			return false, err
		}
		if !sat {
			return true, nil
		}
	}
	return false, nil
}

func clampAdd(v, step, max int) int {
	if v > max-step {
		return max
	}
	return v + step
}

func clampSub(v, step, min int) int {
	if v < min+step {
		return min
	}
	return v - step
}
