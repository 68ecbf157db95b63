// Package actions implements the ordered include/exclude directive
// list that yields one rule's verdict for a file name.
package actions

// Action is a single include or exclude directive.
type Action struct {
	Pattern Pattern
	Include bool
}

// ActionList is the body of one rule: directives in declaration order.
// The list is append-only while the rule loads and is treated as
// frozen afterwards; Includes never mutates it.
type ActionList struct {
	entries []Action
}

// NewList returns an empty action list. An empty list includes
// everything.
func NewList() *ActionList {
	return &ActionList{}
}

// Include appends a directive that re-includes matching files.
func (l *ActionList) Include(p Pattern) {
	l.entries = append(l.entries, Action{Pattern: p, Include: true})
}

// Exclude appends a directive that excludes matching files.
func (l *ActionList) Exclude(p Pattern) {
	l.entries = append(l.entries, Action{Pattern: p, Include: false})
}

// Includes evaluates the file name against every entry in declaration
// order. The last matching entry wins: each match overwrites the
// verdict outright, so a later include can restore a file a broader
// earlier exclude dropped, and vice versa. Files nothing matches stay
// included.
func (l *ActionList) Includes(name string) bool {
	included := true
	for _, a := range l.entries {
		if a.Pattern.Matches(name) {
			included = a.Include
		}
	}
	return included
}

// Len returns the number of directives.
func (l *ActionList) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the directives for display.
func (l *ActionList) Entries() []Action {
	out := make([]Action, len(l.entries))
	copy(out, l.entries)
	return out
}
