package actions

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dotsift/dotsift/pkg/errors"
)

type patternKind int

const (
	patternGlob patternKind = iota
	patternPartial
	patternAnyOf
)

// Pattern matches file names in rule bodies. The union is closed: a
// shell-style glob, a partial-match expression, or a group matching
// when any member matches.
type Pattern struct {
	kind patternKind
	glob string
	expr *regexp.Regexp
	alts []Pattern
}

// Glob compiles a shell-style glob. Matching is "dotglob": a wildcard
// matches a leading dot, so ".zsh*" and "*.zsh*" both see hidden
// files without special casing.
func Glob(pattern string) (Pattern, error) {
	if err := validateGlob(pattern); err != nil {
		return Pattern{}, err
	}
	return Pattern{kind: patternGlob, glob: pattern}, nil
}

// Partial compiles an unanchored regular expression.
func Partial(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, errors.Wrapf(err, errors.ErrPatternInvalid, "invalid pattern %q", expr)
	}
	return Pattern{kind: patternPartial, expr: re}, nil
}

// AnyOf groups patterns; the group matches when any member matches.
func AnyOf(patterns ...Pattern) Pattern {
	return Pattern{kind: patternAnyOf, alts: patterns}
}

// Matches reports whether the file name matches the pattern.
func (p Pattern) Matches(name string) bool {
	switch p.kind {
	case patternGlob:
		// Validated at construction, so Match cannot fail here.
		ok, _ := path.Match(p.glob, name)
		return ok
	case patternPartial:
		return p.expr.MatchString(name)
	case patternAnyOf:
		for _, alt := range p.alts {
			if alt.Matches(name) {
				return true
			}
		}
	}
	return false
}

// String renders the pattern the way it appears in configuration.
func (p Pattern) String() string {
	switch p.kind {
	case patternGlob:
		return strconv.Quote(p.glob)
	case patternPartial:
		return "/" + p.expr.String() + "/"
	case patternAnyOf:
		parts := make([]string, len(p.alts))
		for i, alt := range p.alts {
			parts[i] = alt.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "?"
}

// validateGlob rejects the pattern shapes path.Match reports as
// ErrBadPattern (unfinished escapes, malformed character classes), so
// matching never has to surface a pattern error at query time.
func validateGlob(pattern string) error {
	bad := func(reason string) error {
		return errors.Newf(errors.ErrPatternInvalid, "glob %q has %s", pattern, reason)
	}
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
			if i == len(pattern) {
				return bad("an unfinished escape")
			}
		case '[':
			i++
			if i < len(pattern) && pattern[i] == '^' {
				i++
			}
			// Walk low[-hi] range pairs the way path.Match does; a ']'
			// only closes the class after at least one range.
			nrange := 0
			for {
				if i < len(pattern) && pattern[i] == ']' && nrange > 0 {
					break
				}
				var err error
				if i, err = scanRangeChar(pattern, i, bad); err != nil {
					return err
				}
				if i < len(pattern) && pattern[i] == '-' {
					if i, err = scanRangeChar(pattern, i+1, bad); err != nil {
						return err
					}
				}
				nrange++
				if i >= len(pattern) {
					return bad("an unterminated character class")
				}
			}
		}
	}
	return nil
}

// scanRangeChar consumes one endpoint of a character-class range.
func scanRangeChar(pattern string, i int, bad func(string) error) (int, error) {
	if i >= len(pattern) {
		return i, bad("an unterminated character class")
	}
	if pattern[i] == '-' || pattern[i] == ']' {
		return i, bad("a malformed character class")
	}
	if pattern[i] == '\\' {
		i++
		if i >= len(pattern) {
			return i, bad("an unfinished escape")
		}
	}
	_, size := utf8.DecodeRuneInString(pattern[i:])
	return i + size, nil
}
