package smt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrldedit/gensmt/bf"
)

func TestSatisfiableBoolean(t *testing.T) {
	s := NewSolver()
	sat, err := s.IsSatisfiable(bf.And(bf.Var("p"), bf.Or(bf.Not(bf.Var("p")), bf.Var("q"))))
	require.NoError(t, err)
	assert.True(t, sat)

	unsat, err := s.IsUnsatisfiable(bf.And(bf.Var("p"), bf.Not(bf.Var("p"))))
	require.NoError(t, err)
	assert.True(t, unsat)
}

func TestModelSatisfiesFormula(t *testing.T) {
	s := NewSolver(WithDomain(-16, 16))
	f := bf.And(
		bf.Var("p"),
		bf.Implies(bf.Var("p"), bf.Not(bf.Var("q"))),
		bf.IntGe("x", 0),
		bf.IntLe("x", 10),
		bf.IntNeq("x", 3),
	)
	m, err := s.Model(f)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, f.Eval(*m))

	p, ok := m.Bool("p")
	require.True(t, ok)
	assert.True(t, p)
	x, ok := m.Int("x")
	require.True(t, ok)
	assert.GreaterOrEqual(t, x, 0)
	assert.LessOrEqual(t, x, 10)
	assert.NotEqual(t, 3, x)
}

func TestModelUnsat(t *testing.T) {
	s := NewSolver(WithDomain(-16, 16))
	m, err := s.Model(bf.And(bf.IntLt("x", 0), bf.IntGt("x", 0)))
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestIntEquality(t *testing.T) {
	s := NewSolver(WithDomain(-16, 16))
	m, err := s.Model(bf.IntEq("x", 5))
	require.NoError(t, err)
	require.NotNil(t, m)
	x, ok := m.Int("x")
	require.True(t, ok)
	assert.Equal(t, 5, x)

	m, err = s.Model(bf.IntEq("x", -7))
	require.NoError(t, err)
	require.NotNil(t, m)
	x, _ = m.Int("x")
	assert.Equal(t, -7, x)
}

func TestVarVarAtoms(t *testing.T) {
	s := NewSolver(WithDomain(-16, 16))
	f := bf.And(bf.IntLtVar("x", "y"), bf.IntEq("x", 7))
	m, err := s.Model(f)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, f.Eval(*m))
	y, _ := m.Int("y")
	assert.Greater(t, y, 7)

	unsat, err := s.IsUnsatisfiable(bf.And(bf.IntLtVar("x", "y"), bf.IntLtVar("y", "x")))
	require.NoError(t, err)
	assert.True(t, unsat)

	sat, err := s.IsSatisfiable(bf.And(bf.IntEqVar("x", "y"), bf.IntEq("x", 2), bf.IntEq("y", 2)))
	require.NoError(t, err)
	assert.True(t, sat)
}

func TestDomainBounds(t *testing.T) {
	s := NewSolver(WithDomain(-16, 16))
	// Values outside the domain are unsatisfiable by construction.
	unsat, err := s.IsUnsatisfiable(bf.IntEq("x", 100))
	require.NoError(t, err)
	assert.True(t, unsat)

	// The domain edges themselves are reachable.
	for _, k := range []int{-16, 16} {
		m, err := s.Model(bf.IntEq("x", k))
		require.NoError(t, err)
		require.NotNil(t, m)
		x, _ := m.Int("x")
		assert.Equal(t, k, x)
	}
}

func TestSortConflict(t *testing.T) {
	s := NewSolver(WithDomain(-16, 16))
	_, err := s.Model(bf.And(bf.Var("x"), bf.IntEq("x", 1)))
	assert.Error(t, err)
}

func TestMixedSorts(t *testing.T) {
	s := NewSolver(WithDomain(-16, 16))
	f := bf.And(
		bf.Implies(bf.Var("p"), bf.IntGe("x", 5)),
		bf.Implies(bf.Not(bf.Var("p")), bf.IntLt("x", 0)),
		bf.Var("p"),
	)
	m, err := s.Model(f)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, f.Eval(*m))
	x, _ := m.Int("x")
	assert.GreaterOrEqual(t, x, 5)
}
