package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrldedit/gensmt/bf"
	"github.com/wrldedit/gensmt/smt"
)

// countingOracle counts the queries issued to the wrapped oracle.
type countingOracle struct {
	inner   smt.Oracle
	queries int
}

func (c *countingOracle) IsSatisfiable(f bf.Formula) (bool, error) {
	c.queries++
	return c.inner.IsSatisfiable(f)
}

func (c *countingOracle) IsUnsatisfiable(f bf.Formula) (bool, error) {
	c.queries++
	return c.inner.IsUnsatisfiable(f)
}

func (c *countingOracle) Model(f bf.Formula) (*bf.Model, error) {
	c.queries++
	return c.inner.Model(f)
}

func newOracle() smt.Oracle {
	return smt.NewSolver(smt.WithDomain(-32, 32))
}

func contains(rels []Relation, want Relation) bool {
	for _, r := range rels {
		if r == want {
			return true
		}
	}
	return false
}

func TestDirectTransitive(t *testing.T) {
	// p, p -> q and q -> r force all three variables true everywhere.
	f := bf.And(
		bf.Var("p"),
		bf.Implies(bf.Var("p"), bf.Var("q")),
		bf.Implies(bf.Var("q"), bf.Var("r")),
	)
	report, err := Discover(newOracle(), f, nil, DirectQuery)
	require.NoError(t, err)
	assert.Equal(t, OK, report.State)
	assert.Empty(t, report.Failed)
	for _, v := range []string{"p", "q", "r"} {
		assert.True(t, contains(report.Relations,
			Relation{Kind: AlwaysTrue, Var: v, Strategy: DirectQuery}), "%s always true", v)
	}
	// The transitive implication is found directly.
	assert.True(t, contains(report.Relations,
		Relation{Kind: Implication, Var: "p", Other: "r", Implied: true, Strategy: DirectQuery}))
}

// A pure implication cycle fixes nothing but relates everything: all three
// variables rise and fall together.
func TestDirectCycle(t *testing.T) {
	f := bf.And(
		bf.Implies(bf.Var("p"), bf.Var("q")),
		bf.Implies(bf.Var("q"), bf.Var("r")),
		bf.Implies(bf.Var("r"), bf.Var("p")),
	)
	report, err := Discover(newOracle(), f, nil, DirectQuery)
	require.NoError(t, err)
	assert.Equal(t, OK, report.State)
	expected := []Relation{
		{Kind: Implication, Var: "p", Other: "q", Implied: true, Strategy: DirectQuery},
		{Kind: Implication, Var: "p", Other: "r", Implied: true, Strategy: DirectQuery},
		{Kind: Implication, Var: "q", Other: "p", Implied: true, Strategy: DirectQuery},
		{Kind: Implication, Var: "q", Other: "r", Implied: true, Strategy: DirectQuery},
		{Kind: Implication, Var: "r", Other: "p", Implied: true, Strategy: DirectQuery},
		{Kind: Implication, Var: "r", Other: "q", Implied: true, Strategy: DirectQuery},
	}
	assert.ElementsMatch(t, expected, report.Relations)
}

func TestDirectExclusion(t *testing.T) {
	f := bf.Xor(bf.Var("p"), bf.Var("q"))
	report, err := Discover(newOracle(), f, nil, DirectQuery)
	require.NoError(t, err)
	assert.Equal(t, OK, report.State)
	expected := []Relation{
		{Kind: Implication, Var: "p", Other: "q", Implied: false, Strategy: DirectQuery},
		{Kind: Implication, Var: "q", Other: "p", Implied: false, Strategy: DirectQuery},
	}
	assert.ElementsMatch(t, expected, report.Relations)
}

// Implications whose antecedent can never be true are vacuous and must not
// be reported.
func TestDirectVacuousFilter(t *testing.T) {
	f := bf.And(bf.Not(bf.Var("p")), bf.Var("q"))
	report, err := Discover(newOracle(), f, nil, DirectQuery)
	require.NoError(t, err)
	assert.True(t, contains(report.Relations,
		Relation{Kind: AlwaysFalse, Var: "p", Strategy: DirectQuery}))
	assert.True(t, contains(report.Relations,
		Relation{Kind: AlwaysTrue, Var: "q", Strategy: DirectQuery}))
	for _, r := range report.Relations {
		if r.Kind == Implication {
			assert.NotEqual(t, "p", r.Var, "vacuous implication %s", r)
		}
	}
}

// An unsatisfiable formula is detected with the very first query; no
// per-variable work runs.
func TestDirectNoSolution(t *testing.T) {
	o := &countingOracle{inner: newOracle()}
	f := bf.And(bf.Var("p"), bf.Not(bf.Var("p")))
	report, err := Discover(o, f, nil, DirectQuery)
	require.NoError(t, err)
	assert.Equal(t, NoSolution, report.State)
	assert.Empty(t, report.Relations)
	assert.Equal(t, 1, o.queries)
}

func TestNoVariables(t *testing.T) {
	report, err := Discover(newOracle(), bf.IntEq("x", 1), nil, DirectQuery)
	require.NoError(t, err)
	assert.Equal(t, NoVariables, report.State)

	report, err = Discover(newOracle(), bf.Var("p"), []string{}, ModelSampling)
	require.NoError(t, err)
	assert.Equal(t, NoVariables, report.State)
}

func TestUnknownStrategy(t *testing.T) {
	_, err := Discover(newOracle(), bf.Var("p"), nil, Strategy(42))
	assert.Error(t, err)
}

func TestExplicitVarsDeduped(t *testing.T) {
	f := bf.And(bf.Var("p"), bf.Var("q"))
	report, err := Discover(newOracle(), f, []string{"q", "p", "q"}, DirectQuery)
	require.NoError(t, err)
	count := 0
	for _, r := range report.Relations {
		if r.Kind == AlwaysTrue && r.Var == "q" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSamplingExhaustive(t *testing.T) {
	// Or(p, q) has exactly three models; a cap of ten drains them all.
	f := bf.Or(bf.Var("p"), bf.Var("q"))
	report, err := Discover(newOracle(), f, nil, ModelSampling)
	require.NoError(t, err)
	assert.Equal(t, OK, report.State)
	assert.True(t, report.Exhaustive)
	assert.Equal(t, 3, report.ModelsExamined)
	// Neither variable is fixed and neither implies the other.
	assert.Empty(t, report.Relations)
}

func TestSamplingCap(t *testing.T) {
	// Three unconstrained variables give eight models; the cap stops early.
	f := bf.And(
		bf.Or(bf.Var("p"), bf.Not(bf.Var("p"))),
		bf.Or(bf.Var("q"), bf.Not(bf.Var("q"))),
		bf.Or(bf.Var("r"), bf.Not(bf.Var("r"))),
	)
	report, err := Discover(newOracle(), f, nil, ModelSampling, WithSampleCap(4))
	require.NoError(t, err)
	assert.False(t, report.Exhaustive)
	assert.Equal(t, 4, report.ModelsExamined)
}

func TestSamplingFixedAndImplication(t *testing.T) {
	// p is true in both models; q varies freely.
	f := bf.And(bf.Var("p"), bf.Or(bf.Var("q"), bf.Not(bf.Var("q"))))
	report, err := Discover(newOracle(), f, nil, ModelSampling)
	require.NoError(t, err)
	assert.True(t, report.Exhaustive)
	assert.Equal(t, 2, report.ModelsExamined)
	assert.True(t, contains(report.Relations,
		Relation{Kind: AlwaysTrue, Var: "p", Strategy: ModelSampling}))
	// Whenever q is true, p is true.
	assert.True(t, contains(report.Relations,
		Relation{Kind: Implication, Var: "q", Other: "p", Implied: true, Strategy: ModelSampling}))
	// p implies nothing about q: the two samples disagree on it.
	for _, r := range report.Relations {
		if r.Kind == Implication && r.Var == "p" {
			t.Errorf("unexpected implication %s", r)
		}
	}
}

func TestSamplingNoSolution(t *testing.T) {
	f := bf.And(bf.Var("p"), bf.Not(bf.Var("p")))
	report, err := Discover(newOracle(), f, nil, ModelSampling)
	require.NoError(t, err)
	assert.Equal(t, NoSolution, report.State)
}

func TestRelationString(t *testing.T) {
	r := Relation{Kind: Implication, Var: "a", Other: "b", Implied: false}
	assert.Equal(t, "a = true implies b = false", r.String())
	assert.Equal(t, "a is always true", Relation{Kind: AlwaysTrue, Var: "a"}.String())
}

func TestReportString(t *testing.T) {
	report := Report{
		State:    OK,
		Strategy: DirectQuery,
		Relations: []Relation{
			{Kind: AlwaysTrue, Var: "p", Strategy: DirectQuery},
		},
	}
	expected := "Boolean relations (direct-query):\n  p is always true\n"
	assert.Equal(t, expected, report.String())

	empty := Report{State: NoSolution, Strategy: DirectQuery}
	assert.Equal(t, "Boolean relations (direct-query):\n  no solution exists\n", empty.String())
}
