package predicate

import (
	"github.com/dotsift/dotsift/pkg/errors"
	"github.com/dotsift/dotsift/pkg/machine"
)

// Kind tags the variant of a predicate node.
type Kind int

const (
	KindTrue Kind = iota
	KindFalse
	KindHost
	KindUser
	KindOS
	KindEnv
	KindAnd
	KindOr
)

// Predicate is one node of a boolean expression tree over a
// machine.Context. Operands of a combinator belong exclusively to that
// combinator: trees are pure, with no sharing and no cycles, except
// for the True/False singletons which carry no state.
type Predicate struct {
	kind  Kind
	value Match      // comparison value for host/user/env leaves
	key   string     // environment variable name for env leaves
	class machine.OS // class for os leaves
	left  *Predicate
	right *Predicate
}

// Shared constants. They hold no state, so every True() caller can see
// the same node.
var (
	truePredicate  = &Predicate{kind: KindTrue}
	falsePredicate = &Predicate{kind: KindFalse}
)

// True returns the always-matching predicate.
func True() *Predicate { return truePredicate }

// False returns the never-matching predicate.
func False() *Predicate { return falsePredicate }

// HostEq matches the context hostname against value.
func HostEq(value Match) *Predicate {
	return &Predicate{kind: KindHost, value: value}
}

// UserEq matches the context user against value.
func UserEq(value Match) *Predicate {
	return &Predicate{kind: KindUser, value: value}
}

// OSEq matches the context OS class. The class is validated here, so a
// bad os criterion fails when the rule is built rather than when it is
// first queried.
func OSEq(class machine.OS) (*Predicate, error) {
	if !class.Valid() {
		return nil, errors.Newf(errors.ErrOSClassInvalid, "unknown os class %q", string(class))
	}
	return &Predicate{kind: KindOS, class: class}, nil
}

// EnvEq matches the value of one environment variable. A variable
// absent from the context never matches; absence is not an error.
func EnvEq(key string, value Match) *Predicate {
	return &Predicate{kind: KindEnv, key: key, value: value}
}

// And matches when both operands match.
func And(left, right *Predicate) *Predicate {
	return &Predicate{kind: KindAnd, left: left, right: right}
}

// Or matches when either operand matches.
func Or(left, right *Predicate) *Predicate {
	return &Predicate{kind: KindOr, left: left, right: right}
}

// Kind returns the variant tag of the node.
func (p *Predicate) Kind() Kind { return p.kind }

// Test evaluates the predicate against a machine context. Evaluation
// is pure; combinators evaluate both operands, there being no side
// effects worth short-circuiting around.
func (p *Predicate) Test(ctx machine.Context) bool {
	switch p.kind {
	case KindTrue:
		return true
	case KindFalse:
		return false
	case KindHost:
		return p.value.matches(ctx.Host, true)
	case KindUser:
		return p.value.matches(ctx.User, true)
	case KindOS:
		return ctx.OS == p.class
	case KindEnv:
		v, ok := ctx.Env[p.key]
		if !ok {
			return false
		}
		return p.value.matches(v, false)
	case KindAnd:
		l := p.left.Test(ctx)
		r := p.right.Test(ctx)
		return l && r
	case KindOr:
		l := p.left.Test(ctx)
		r := p.right.Test(ctx)
		return l || r
	}
	return false
}

// Describe renders the predicate as a human-readable boolean
// expression for diagnostics.
func (p *Predicate) Describe() string {
	switch p.kind {
	case KindTrue:
		return "true"
	case KindFalse:
		return "false"
	case KindHost:
		return "host " + p.value.operator() + " " + p.value.describe(true)
	case KindUser:
		return "user " + p.value.operator() + " " + p.value.describe(true)
	case KindOS:
		return "os == " + p.class.DisplayName()
	case KindEnv:
		return "env[" + p.key + "] " + p.value.operator() + " " + p.value.describe(false)
	case KindAnd:
		return "(" + p.left.Describe() + " and " + p.right.Describe() + ")"
	case KindOr:
		return "(" + p.left.Describe() + " or " + p.right.Describe() + ")"
	}
	return "?"
}

// Equal reports structural equality, ignoring node identity.
func (p *Predicate) Equal(o *Predicate) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil || p.kind != o.kind {
		return false
	}
	switch p.kind {
	case KindHost, KindUser:
		return p.value.equal(o.value)
	case KindOS:
		return p.class == o.class
	case KindEnv:
		return p.key == o.key && p.value.equal(o.value)
	case KindAnd, KindOr:
		return p.left.Equal(o.left) && p.right.Equal(o.right)
	}
	return true
}
