// Package predicate implements the boolean filter algebra that decides
// whether a rule applies on a given machine.
//
// A predicate is an immutable expression tree over a machine.Context.
// The variant set is closed: constants, host/user/os/env comparisons,
// and the And/Or combinators. Evaluation, description and
// simplification each switch exhaustively over the variant tag, so a
// new variant cannot be added without every operation being updated.
//
// Leaf comparison values are resolved into Match form (literal or
// compiled expression) once, when the rule is loaded. Literal host and
// user comparisons fold case; expression matches are partial and
// case-sensitive.
//
// Trees are side-effect-free to evaluate and never mutated after
// construction, so they may be shared by concurrent readers.
package predicate
