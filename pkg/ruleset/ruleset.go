// Package ruleset aggregates rules into one per-file inclusion
// verdict for the current machine.
package ruleset

import (
	"github.com/rs/zerolog"

	"github.com/dotsift/dotsift/pkg/actions"
	"github.com/dotsift/dotsift/pkg/logging"
	"github.com/dotsift/dotsift/pkg/machine"
	"github.com/dotsift/dotsift/pkg/predicate"
)

// Rule pairs the predicate deciding whether the rule applies on this
// machine with the action list giving its per-file verdict.
type Rule struct {
	When    *predicate.Predicate
	Actions *actions.ActionList
}

// RuleSet is an ordered rule collection bound to one machine context.
// It is built once at load time, never mutated afterwards, and safe
// for concurrent readers.
type RuleSet struct {
	ctx    machine.Context
	rules  []Rule
	logger zerolog.Logger
}

// New binds rules to a captured machine context.
func New(ctx machine.Context, rules []Rule) *RuleSet {
	return &RuleSet{
		ctx:    ctx,
		rules:  rules,
		logger: logging.GetLogger("ruleset"),
	}
}

// Included reports whether fileName is included on this machine.
// Every rule whose predicate matches the context is consulted in
// declaration order and the verdicts are AND-combined: once one
// matching rule excludes the file, no later rule re-includes it. Note
// the asymmetry with ActionList.Includes, where a later directive
// overrides earlier ones; across rules the combination is monotone.
// With no rules, or none matching, the default is inclusion.
func (s *RuleSet) Included(fileName string) bool {
	included := true
	for i, rule := range s.rules {
		if !rule.When.Test(s.ctx) {
			continue
		}
		verdict := rule.Actions.Includes(fileName)
		included = included && verdict
		s.logger.Debug().
			Int("rule", i).
			Str("file", fileName).
			Bool("verdict", verdict).
			Bool("included", included).
			Msg("Rule matched context")
	}
	return included
}

// Context returns the machine context the set was bound to.
func (s *RuleSet) Context() machine.Context {
	return s.ctx
}

// Rules returns a copy of the rules for display.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of loaded rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}
