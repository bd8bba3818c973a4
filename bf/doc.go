// Package bf defines generic constraint formulas over boolean variables and
// bounded integer variables.
//
// SAT solvers expect CNF formulas: a set of clauses that must all be true,
// each clause being a set of potentially negated boolean literals. Manually
// translating a mixed boolean/integer formula to an equivalent CNF is tedious
// and error-prone. This package provides logical connectors and integer
// comparison atoms to define generic formulas, and translates them to CNF
// automatically.
//
// For example, the constraint
//
// p & (p -> q) & (x >= 0) & (x <= 10)
//
// is defined with the following code:
//
// f := And(Var("p"), Implies(Var("p"), Var("q")), IntGe("x", 0), IntLe("x", 10))
//
// Compile translates f to clauses: boolean structure through the usual NNF
// and Tseitin transformations, and each integer variable through an order
// encoding over a caller-chosen domain, where one literal per domain value c
// stands for "x <= c". The translation is polynomial in the size of the
// formula and linear in the size of the domain.
//
// This package never solves anything: the clauses are handed to a
// satisfiability oracle (see the smt package), and a satisfying assignment is
// mapped back to named variables with Decode.
package bf
