package bf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileErrors(t *testing.T) {
	_, err := Compile(Var("a"), 5, 5)
	assert.Error(t, err)
	_, err = Compile(Var("a"), 5, -5)
	assert.Error(t, err)
	// Same name used as boolean and as integer.
	_, err = Compile(And(Var("x"), IntEq("x", 1)), -4, 4)
	assert.Error(t, err)
}

func TestCompileBooleanOnly(t *testing.T) {
	p, err := Compile(And(Var("a"), Not(Var("b"))), -4, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NbVars)
	assert.Equal(t, 0, p.NbAux())
	assert.Equal(t, 2, len(p.Clauses))

	m := p.Decode(func(idx int) bool { return idx == p.bools["a"] })
	a, ok := m.Bool("a")
	require.True(t, ok)
	assert.True(t, a)
	b, ok := m.Bool("b")
	require.True(t, ok)
	assert.False(t, b)
}

func TestCompileOrderEncoding(t *testing.T) {
	p, err := Compile(IntEq("x", 2), 0, 4)
	require.NoError(t, err)
	// One order literal per domain value below the top.
	require.Len(t, p.order["x"], 4)
	// Order literals are auxiliary: the decoded model has no boolean vars.
	assert.Empty(t, p.bools)

	// An assignment where "x <= c" holds exactly for c >= 2 decodes to x = 2.
	ord := p.order["x"]
	m := p.Decode(func(idx int) bool {
		for i, o := range ord {
			if o == idx {
				return i >= 2
			}
		}
		return false
	})
	x, ok := m.Int("x")
	require.True(t, ok)
	assert.Equal(t, 2, x)

	// No order literal true means the variable sits at the top of the domain.
	m = p.Decode(func(int) bool { return false })
	x, _ = m.Int("x")
	assert.Equal(t, 4, x)
}

// Constant folding of atoms that leave the domain entirely.
func TestCompileAtomOutsideDomain(t *testing.T) {
	// x <= 100 is a tautology over [0, 4]: compiling it with another
	// variable's constraint must not add clauses beyond the channeling.
	p, err := Compile(And(IntLe("x", 100), IntGe("x", 0)), 0, 4)
	require.NoError(t, err)
	require.NotNil(t, p)

	// x == 100 is unsatisfiable over [0, 4]: the CNF must contain the empty
	// clause.
	p, err = Compile(IntEq("x", 100), 0, 4)
	require.NoError(t, err)
	hasEmpty := false
	for _, clause := range p.Clauses {
		if len(clause) == 0 {
			hasEmpty = true
		}
	}
	assert.True(t, hasEmpty)
}
