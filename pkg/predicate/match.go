package predicate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dotsift/dotsift/pkg/errors"
)

// Match is the comparison value of a leaf predicate: either a literal
// string or a compiled partial-match expression. The two forms are
// distinguished once at load time, not re-dispatched per evaluation.
type Match struct {
	literal string
	expr    *regexp.Regexp
}

// Literal builds a Match comparing for string equality.
func Literal(s string) Match {
	return Match{literal: s}
}

// Pattern builds a Match testing an unanchored regular expression.
func Pattern(expr string) (Match, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Match{}, errors.Wrapf(err, errors.ErrPatternInvalid, "invalid match pattern %q", expr)
	}
	return Match{expr: re}, nil
}

// IsPattern reports whether the match is an expression rather than a
// literal.
func (m Match) IsPattern() bool {
	return m.expr != nil
}

// matches tests a context field. Expressions match partially and
// case-sensitively; literals compare exactly, folding case when
// foldCase is set (host and user comparisons fold, env values do not).
func (m Match) matches(field string, foldCase bool) bool {
	if m.expr != nil {
		return m.expr.MatchString(field)
	}
	if foldCase {
		return strings.EqualFold(m.literal, field)
	}
	return m.literal == field
}

// operator is the comparison symbol used when describing a predicate.
func (m Match) operator() string {
	if m.expr != nil {
		return "=~"
	}
	return "=="
}

// describe renders the operand for diagnostics. Case-folded literals
// are shown lower-cased, matching how they compare.
func (m Match) describe(foldCase bool) string {
	if m.expr != nil {
		return "/" + m.expr.String() + "/"
	}
	if foldCase {
		return strconv.Quote(strings.ToLower(m.literal))
	}
	return strconv.Quote(m.literal)
}

// equal reports whether two matches have the same form and source.
func (m Match) equal(o Match) bool {
	if (m.expr == nil) != (o.expr == nil) {
		return false
	}
	if m.expr != nil {
		return m.expr.String() == o.expr.String()
	}
	return m.literal == o.literal
}
