package ruleset

import (
	"github.com/dotsift/dotsift/pkg/actions"
	"github.com/dotsift/dotsift/pkg/config"
	"github.com/dotsift/dotsift/pkg/errors"
	"github.com/dotsift/dotsift/pkg/logging"
	"github.com/dotsift/dotsift/pkg/machine"
	"github.com/dotsift/dotsift/pkg/predicate"
)

// Load builds a RuleSet from a parsed document. All validation happens
// here: a malformed criterion, pattern, or os class fails the load
// before any inclusion query runs, so a RuleSet is never partially
// usable.
func Load(doc config.Document, ctx machine.Context) (*RuleSet, error) {
	logger := logging.GetLogger("ruleset.loader")

	rules := make([]Rule, 0, len(doc.Rules))
	for i, decl := range doc.Rules {
		if !decl.HasBody {
			logger.Debug().Int("rule", i).Msg("Skipping rule with no body")
			continue
		}
		rule, err := buildRule(decl)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "rule %d", i)
		}
		logger.Debug().
			Int("rule", i).
			Str("when", rule.When.Describe()).
			Int("directives", rule.Actions.Len()).
			Msg("Loaded rule")
		rules = append(rules, rule)
	}

	logger.Debug().Int("rules", len(rules)).Msg("Rule set loaded")
	return New(ctx, rules), nil
}

func buildRule(decl config.RuleDecl) (Rule, error) {
	when, err := buildPredicate(decl)
	if err != nil {
		return Rule{}, err
	}

	list := actions.NewList()
	for _, action := range decl.Actions {
		pattern, err := buildPattern(action.Patterns)
		if err != nil {
			return Rule{}, err
		}
		if action.Include {
			list.Include(pattern)
		} else {
			list.Exclude(pattern)
		}
	}

	return Rule{When: when.Simplify(), Actions: list}, nil
}

// buildPredicate folds the four criteria into one conjunction. Every
// fold is seeded with its identity element (True for and-folds, False
// for or-folds); Simplify strips the seeds back out afterwards, so a
// rule with no criteria ends up with the plain True predicate.
func buildPredicate(decl config.RuleDecl) (*predicate.Predicate, error) {
	host, err := anyOf(decl.Host, predicate.HostEq)
	if err != nil {
		return nil, err
	}

	osClass, err := anyOSOf(decl.OS)
	if err != nil {
		return nil, err
	}

	user, err := anyOf(decl.User, predicate.UserEq)
	if err != nil {
		return nil, err
	}

	env, err := allEnvOf(decl.Env)
	if err != nil {
		return nil, err
	}

	when := predicate.True()
	for _, part := range []*predicate.Predicate{host, osClass, user, env} {
		when = predicate.And(when, part)
	}
	return when, nil
}

// anyOf or-folds one host/user criterion. An absent criterion matches
// every machine.
func anyOf(values []config.Value, leaf func(predicate.Match) *predicate.Predicate) (*predicate.Predicate, error) {
	if len(values) == 0 {
		return predicate.True(), nil
	}
	p := predicate.False()
	for _, v := range values {
		m, err := toMatch(v)
		if err != nil {
			return nil, err
		}
		p = predicate.Or(p, leaf(m))
	}
	return p, nil
}

// anyOSOf or-folds the os criterion. Classes are literal-only and
// validated against the fixed set.
func anyOSOf(values []config.Value) (*predicate.Predicate, error) {
	if len(values) == 0 {
		return predicate.True(), nil
	}
	p := predicate.False()
	for _, v := range values {
		if v.IsPattern {
			return nil, errors.Newf(errors.ErrOSClassInvalid,
				"os criteria accept only literal class names, got pattern /%s/", v.Text)
		}
		class, err := machine.ParseOS(v.Text)
		if err != nil {
			return nil, err
		}
		leaf, err := predicate.OSEq(class)
		if err != nil {
			return nil, err
		}
		p = predicate.Or(p, leaf)
	}
	return p, nil
}

// allEnvOf and-folds the env criteria. An absent env criterion matches
// every machine; an absent variable at query time is a non-match, not
// an error.
func allEnvOf(criteria []config.EnvCriterion) (*predicate.Predicate, error) {
	p := predicate.True()
	for _, criterion := range criteria {
		m, err := toMatch(criterion.Value)
		if err != nil {
			return nil, err
		}
		p = predicate.And(p, predicate.EnvEq(criterion.Name, m))
	}
	return p, nil
}

func toMatch(v config.Value) (predicate.Match, error) {
	if v.IsPattern {
		return predicate.Pattern(v.Text)
	}
	return predicate.Literal(v.Text), nil
}

// buildPattern compiles one directive's patterns: globs for plain
// strings, partial expressions for slash-wrapped ones, grouped when
// the directive lists more than one.
func buildPattern(values []config.Value) (actions.Pattern, error) {
	patterns := make([]actions.Pattern, 0, len(values))
	for _, v := range values {
		var p actions.Pattern
		var err error
		if v.IsPattern {
			p, err = actions.Partial(v.Text)
		} else {
			p, err = actions.Glob(v.Text)
		}
		if err != nil {
			return actions.Pattern{}, err
		}
		patterns = append(patterns, p)
	}
	if len(patterns) == 1 {
		return patterns[0], nil
	}
	return actions.AnyOf(patterns...), nil
}
