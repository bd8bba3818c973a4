package bf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a", "a"},
		{"^a", "not(a)"},
		{"a & b", "and(a, b)"},
		{"a | b & c", "or(a, and(b, c))"},
		{"(a | b) & c", "and(or(a, b), c)"},
		{"a -> b", "or(not(a), b)"},
		{"a -> b -> c", "or(not(a), or(not(b), c))"},
		{"a = b", "and(or(not(a), b), or(a, not(b)))"},
		{"^(a & b)", "not(and(a, b))"},
		{"x == 3", "x == 3"},
		{"x != 5", "x != 5"},
		{"x < 10", "x < 10"},
		{"x <= 10", "x <= 10"},
		{"x > -2", "x > -2"},
		{"x >= -2", "x >= -2"},
		{"x < y", "x < y"},
		{"y >= x", "y >= x"},
		{"x == y", "x == y"},
		{"x >= 0 & x <= 10", "and(x >= 0, x <= 10)"},
		{"p -> x == 1", "or(not(p), x == 1)"},
		{"x == 0 | x == 10", "or(x == 0, x == 10)"},
		{"(x < y) & p", "and(x < y, p)"},
	}
	for _, test := range tests {
		f, err := Parse(strings.NewReader(test.input))
		require.NoError(t, err, "input %q", test.input)
		assert.Equal(t, test.expected, f.String(), "input %q", test.input)
	}
}

// A single "=" between variables stays a boolean equivalence; only "=="
// makes an integer atom.
func TestParseEquivVersusIntEq(t *testing.T) {
	f, err := Parse(strings.NewReader("a = b & c"))
	require.NoError(t, err)
	assert.Equal(t, "and(or(not(a), and(b, c)), or(a, not(and(b, c))))", f.String())

	f, err = Parse(strings.NewReader("a == 1 = b"))
	require.NoError(t, err)
	assert.Equal(t, "and(or(not(a == 1), b), or(a == 1, not(b)))", f.String())
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"&",
		"a &",
		"a & | b",
		"(a",
		"x >",
		"x >=",
		"x == |",
		"x != )",
		"x < -",
		"a -< b",
		"x !y",
	}
	for _, input := range inputs {
		_, err := Parse(strings.NewReader(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseEvalRoundTrip(t *testing.T) {
	f, err := Parse(strings.NewReader("(p -> x >= 0) & (^p -> x < 0)"))
	require.NoError(t, err)

	assert.True(t, f.Eval(NewModel(map[string]bool{"p": true}, map[string]int{"x": 3})))
	assert.False(t, f.Eval(NewModel(map[string]bool{"p": true}, map[string]int{"x": -3})))
	assert.True(t, f.Eval(NewModel(map[string]bool{"p": false}, map[string]int{"x": -3})))
}
