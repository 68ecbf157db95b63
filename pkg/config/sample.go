package config

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/dotsift/dotsift/pkg/errors"
)

// Sample structures are marshalled with go-toml so the generated file
// is always syntactically valid.
type sampleAction struct {
	Include string `toml:"include,omitempty"`
	Exclude string `toml:"exclude,omitempty"`
}

type sampleRule struct {
	Host    []string          `toml:"host,omitempty"`
	OS      string            `toml:"os,omitempty"`
	User    string            `toml:"user,omitempty"`
	Env     map[string]string `toml:"env,omitempty"`
	Actions []sampleAction    `toml:"actions"`
}

type sampleDocument struct {
	Rules []sampleRule `toml:"rules"`
}

const sampleHeader = `# dotsift rule file.
#
# Each [[rules]] table applies on machines matching its host/os/user/env
# criteria. Its actions decide, last match wins, whether a file is
# included on those machines. Values wrapped in slashes are regular
# expressions; other strings are literals (criteria) or globs (actions).

`

// Sample returns a starter rule file for gen-config.
func Sample() (string, error) {
	doc := sampleDocument{Rules: []sampleRule{
		{
			OS: "windows",
			Actions: []sampleAction{
				{Exclude: ".zsh*"},
				{Exclude: ".bash*"},
			},
		},
		{
			Host: []string{"nexus", "vega"},
			Actions: []sampleAction{
				{Exclude: `/\.gconf.*/`},
			},
		},
		{
			User: "vagrant",
			Env:  map[string]string{"SSH_CONNECTION": "/./"},
			Actions: []sampleAction{
				{Exclude: ".gitconfig"},
				{Include: `/\.gitconfig\.d/`},
			},
		},
	}}

	out, err := toml.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "cannot render sample configuration")
	}
	return sampleHeader + string(out), nil
}
