package bf

import "sort"

// Vars collects the free variables of the formula by a pure tree walk,
// split by sort. Both slices are sorted so the result does not depend on the
// shape of the formula.
func Vars(f Formula) (bools, ints []string) {
	bset := make(map[string]struct{})
	iset := make(map[string]struct{})
	collectVars(f, bset, iset)
	for name := range bset {
		bools = append(bools, name)
	}
	for name := range iset {
		ints = append(ints, name)
	}
	sort.Strings(bools)
	sort.Strings(ints)
	return bools, ints
}

func collectVars(f Formula, bools, ints map[string]struct{}) {
	switch f := f.(type) {
	case variable:
		bools[f.name] = struct{}{}
	case lit:
		bools[f.v.name] = struct{}{}
	case not:
		collectVars(f[0], bools, ints)
	case and:
		for _, sub := range f {
			collectVars(sub, bools, ints)
		}
	case or:
		for _, sub := range f {
			collectVars(sub, bools, ints)
		}
	case intAtom:
		ints[f.v] = struct{}{}
		if f.hasW {
			ints[f.w] = struct{}{}
		}
	case trueConst, falseConst:
	default:
		panic("invalid formula type")
	}
}
