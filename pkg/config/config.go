package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dotsift/dotsift/pkg/errors"
	"github.com/dotsift/dotsift/pkg/logging"
)

// Value is one criterion or action pattern value, already split into
// literal-or-pattern form by the slash convention.
type Value struct {
	Text      string
	IsPattern bool
}

// EnvCriterion pairs an environment variable name with the value it
// must match.
type EnvCriterion struct {
	Name  string
	Value Value
}

// ActionDecl is one body directive of a rule. Patterns holds one or
// more patterns; the directive matches when any of them does.
type ActionDecl struct {
	Patterns []Value
	Include  bool
}

// RuleDecl is the normalized form of one [[rules]] table.
type RuleDecl struct {
	Host []Value
	OS   []Value
	User []Value
	Env  []EnvCriterion // sorted by name so predicate trees are deterministic
	// Actions are the body directives in declaration order. HasBody
	// distinguishes a present-but-empty actions list (a legal no-op
	// rule) from a declaration with no body at all (skipped).
	Actions []ActionDecl
	HasBody bool
}

// Document is a parsed and normalized rule file.
type Document struct {
	Rules []RuleDecl
}

// Load reads and normalizes the rule document at path. The parser is
// chosen by file extension: .toml, .yaml or .yml.
func Load(path string) (Document, error) {
	logger := logging.GetLogger("config")

	parser, err := parserFor(path)
	if err != nil {
		return Document{}, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return Document{}, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse rule file %s", path)
	}

	doc, err := normalize(k.Get("rules"))
	if err != nil {
		return Document{}, err
	}

	logger.Debug().
		Str("path", path).
		Int("rules", len(doc.Rules)).
		Msg("Loaded rule document")

	return doc, nil
}

// LoadBytes parses an in-memory document in the given format ("toml",
// "yaml"). Used by tests and by gen-config round-trip checks.
func LoadBytes(data []byte, format string) (Document, error) {
	parser, err := parserFor("rules." + format)
	if err != nil {
		return Document{}, err
	}

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: data}, parser); err != nil {
		return Document{}, errors.Wrap(err, errors.ErrConfigParse, "cannot parse rule document")
	}

	return normalize(k.Get("rules"))
}

// DefaultPath returns the first rule file found: dotsift.toml or
// .dotsift.toml in the working directory, then dotsift/dotsift.toml
// or dotsift/dotsift.yaml under the XDG config home.
func DefaultPath() (string, error) {
	candidates := []string{
		"dotsift.toml",
		".dotsift.toml",
		filepath.Join(xdg.ConfigHome, "dotsift", "dotsift.toml"),
		filepath.Join(xdg.ConfigHome, "dotsift", "dotsift.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New(errors.ErrConfigLoad,
		"no rule file found (looked for dotsift.toml, .dotsift.toml, and $XDG_CONFIG_HOME/dotsift/)")
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	}
	return nil, errors.Newf(errors.ErrConfigLoad, "unsupported rule file extension %q", filepath.Ext(path))
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

func normalize(raw interface{}) (Document, error) {
	if raw == nil {
		// An empty document is a legal empty rule set.
		return Document{}, nil
	}

	list, ok := raw.([]interface{})
	if !ok {
		return Document{}, errors.Newf(errors.ErrConfigInvalid, `"rules" must be a list of rule tables, got %T`, raw)
	}

	doc := Document{Rules: make([]RuleDecl, 0, len(list))}
	for i, item := range list {
		table, ok := item.(map[string]interface{})
		if !ok {
			return Document{}, errors.Newf(errors.ErrConfigInvalid, "rule %d must be a table, got %T", i, item)
		}
		decl, err := normalizeRule(i, table)
		if err != nil {
			return Document{}, err
		}
		doc.Rules = append(doc.Rules, decl)
	}
	return doc, nil
}

func normalizeRule(index int, table map[string]interface{}) (RuleDecl, error) {
	var decl RuleDecl
	var err error

	for key, raw := range table {
		switch key {
		case "host":
			decl.Host, err = normalizeValues(index, key, raw)
		case "os":
			decl.OS, err = normalizeValues(index, key, raw)
		case "user":
			decl.User, err = normalizeValues(index, key, raw)
		case "env":
			decl.Env, err = normalizeEnv(index, raw)
		case "actions":
			decl.HasBody = true
			decl.Actions, err = normalizeActions(index, raw)
		default:
			return RuleDecl{}, errors.Newf(errors.ErrConfigInvalid, "rule %d: unknown key %q", index, key)
		}
		if err != nil {
			return RuleDecl{}, err
		}
	}
	return decl, nil
}

func normalizeValues(index int, key string, raw interface{}) ([]Value, error) {
	switch v := raw.(type) {
	case string:
		return []Value{parseValue(v)}, nil
	case []interface{}:
		values := make([]Value, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Newf(errors.ErrConfigInvalid,
					"rule %d: %s entries must be strings, got %T", index, key, item)
			}
			values = append(values, parseValue(s))
		}
		return values, nil
	}
	return nil, errors.Newf(errors.ErrConfigInvalid,
		"rule %d: %s must be a string or a list of strings, got %T", index, key, raw)
}

func normalizeEnv(index int, raw interface{}) ([]EnvCriterion, error) {
	table, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrConfigInvalid,
			"rule %d: env must be a table of variable = value, got %T", index, raw)
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	criteria := make([]EnvCriterion, 0, len(names))
	for _, name := range names {
		s, ok := table[name].(string)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigInvalid,
				"rule %d: env[%s] must be a string, got %T", index, name, table[name])
		}
		criteria = append(criteria, EnvCriterion{Name: name, Value: parseValue(s)})
	}
	return criteria, nil
}

func normalizeActions(index int, raw interface{}) ([]ActionDecl, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrConfigInvalid,
			"rule %d: actions must be a list of directives, got %T", index, raw)
	}

	decls := make([]ActionDecl, 0, len(list))
	for j, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.ErrConfigInvalid,
				"rule %d action %d: directive must be a table, got %T", index, j, item)
		}
		if len(entry) != 1 {
			return nil, errors.Newf(errors.ErrConfigInvalid,
				"rule %d action %d: directive needs exactly one of include or exclude", index, j)
		}

		var rawPatterns interface{}
		var include bool
		if v, ok := entry["include"]; ok {
			rawPatterns, include = v, true
		} else if v, ok := entry["exclude"]; ok {
			rawPatterns, include = v, false
		} else {
			for key := range entry {
				return nil, errors.Newf(errors.ErrConfigInvalid,
					"rule %d action %d: unknown directive %q", index, j, key)
			}
		}

		key := "exclude"
		if include {
			key = "include"
		}
		patterns, err := normalizeValues(index, key, rawPatterns)
		if err != nil {
			return nil, err
		}
		if len(patterns) == 0 {
			return nil, errors.Newf(errors.ErrConfigInvalid,
				"rule %d action %d: %s needs at least one pattern", index, j, key)
		}
		decls = append(decls, ActionDecl{Patterns: patterns, Include: include})
	}
	return decls, nil
}

// parseValue splits the slash-wrapped pattern convention off a raw
// string.
func parseValue(s string) Value {
	if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		return Value{Text: s[1 : len(s)-1], IsPattern: true}
	}
	return Value{Text: s}
}
