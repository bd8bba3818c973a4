package bf

import (
	"fmt"
	"sort"
	"strings"
)

// A Model is one concrete assignment satisfying a formula: a finite mapping
// from variable names to boolean or integer values. A model is only
// meaningful for the formula it was produced from and is never mutated.
type Model struct {
	bools map[string]bool
	ints  map[string]int
}

// NewModel builds a model from the given bindings. The maps are copied.
func NewModel(bools map[string]bool, ints map[string]int) Model {
	m := Model{
		bools: make(map[string]bool, len(bools)),
		ints:  make(map[string]int, len(ints)),
	}
	for k, v := range bools {
		m.bools[k] = v
	}
	for k, v := range ints {
		m.ints[k] = v
	}
	return m
}

// Bool returns the binding of the given boolean variable.
// The second return value tells whether the variable is bound at all.
func (m Model) Bool(name string) (bool, bool) {
	v, ok := m.bools[name]
	return v, ok
}

// Int returns the binding of the given integer variable.
// The second return value tells whether the variable is bound at all.
func (m Model) Int(name string) (int, bool) {
	v, ok := m.ints[name]
	return v, ok
}

// BoolVars returns the names of all bound boolean variables, sorted.
func (m Model) BoolVars() []string {
	names := make([]string, 0, len(m.bools))
	for name := range m.bools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IntVars returns the names of all bound integer variables, sorted.
func (m Model) IntVars() []string {
	names := make([]string, 0, len(m.ints))
	for name := range m.ints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m Model) String() string {
	parts := make([]string, 0, len(m.bools)+len(m.ints))
	for _, name := range m.BoolVars() {
		parts = append(parts, fmt.Sprintf("%s=%t", name, m.bools[name]))
	}
	for _, name := range m.IntVars() {
		parts = append(parts, fmt.Sprintf("%s=%d", name, m.ints[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
