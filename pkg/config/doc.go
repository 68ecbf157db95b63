// Package config loads dotsift rule documents.
//
// A rule document is static TOML or YAML. It is parsed and validated
// once at startup and never executed: there is deliberately no
// scripting surface in the configuration.
//
// Each [[rules]] table carries up to four criteria (host, os, user,
// env) and an ordered actions list:
//
//	[[rules]]
//	host = ["nexus", "/^build-\\d+$/"]
//	os = "windows"
//	user = "vagrant"
//	[rules.env]
//	TERM = "/^xterm/"
//	[[rules.actions]]
//	exclude = ".zsh*"
//	[[rules.actions]]
//	include = "/\\.zshrc$/"
//
// A string value wrapped in slashes ("/.../") is a partial-match
// regular expression; any other string is a literal (for criteria) or
// a glob (for action patterns). Criteria accept a single string or a
// list. A rule without an actions key contributes nothing and is
// skipped; an actions key with an empty list is a legal no-op rule.
package config
