package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotsift/dotsift/pkg/config"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeRules(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dotsift.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestCheckCommand(t *testing.T) {
	// No criteria, so the rule applies on whatever machine runs the
	// tests.
	path := writeRules(t, `
[[rules]]
[[rules.actions]]
exclude = ".zsh*"
`)

	out, err := runCommand(t, "check", "--config", path, "--format", "text", ".zshrc", ".bashrc")
	require.NoError(t, err)

	assert.Contains(t, out, ".zshrc")
	assert.Contains(t, out, "excluded")
	assert.Contains(t, out, ".bashrc")
	assert.Contains(t, out, "included")
}

func TestCheckCommand_AutoFormatRedirected(t *testing.T) {
	path := writeRules(t, `
[[rules]]
[[rules.actions]]
exclude = ".zsh*"
`)

	// Output goes to a buffer, not a terminal, so auto must fall back
	// to plain text with no escape sequences.
	out, err := runCommand(t, "check", "--config", path, "--format", "auto", ".zshrc")
	require.NoError(t, err)

	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "excluded")
}

func TestHelpUsesFormattedHeadings(t *testing.T) {
	out, err := runCommand(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "USAGE:")
	assert.Contains(t, out, "AVAILABLE COMMANDS:")
	assert.Contains(t, out, "FLAGS:")
	assert.Contains(t, out, "check")
}

func TestCheckCommand_JSON(t *testing.T) {
	path := writeRules(t, `
[[rules]]
[[rules.actions]]
exclude = ".zsh*"
`)

	out, err := runCommand(t, "check", "--config", path, "--format", "json", ".zshrc")
	require.NoError(t, err)

	var verdicts []fileVerdict
	require.NoError(t, json.Unmarshal([]byte(out), &verdicts))
	require.Len(t, verdicts, 1)
	assert.Equal(t, ".zshrc", verdicts[0].File)
	assert.False(t, verdicts[0].Included)
}

func TestCheckCommand_BadConfig(t *testing.T) {
	path := writeRules(t, `
[[rules]]
os = "beos"
actions = []
`)

	_, err := runCommand(t, "check", "--config", path, "--format", "text", ".zshrc")
	require.Error(t, err)
}

func TestRulesCommand(t *testing.T) {
	path := writeRules(t, `
[[rules]]
host = "no-such-host-anywhere"
[[rules.actions]]
exclude = ".zsh*"
`)

	out, err := runCommand(t, "rules", "--config", path, "--format", "json")
	require.NoError(t, err)

	var reports []ruleReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, `host == "no-such-host-anywhere"`, reports[0].When)
	assert.Equal(t, []string{`exclude ".zsh*"`}, reports[0].Actions)
}

func TestContextCommand(t *testing.T) {
	path := writeRules(t, "")

	out, err := runCommand(t, "context", "--config", path, "--format", "json")
	require.NoError(t, err)

	var report contextReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.Host)
	assert.NotEmpty(t, report.OS)
}

func TestGenConfigCommand(t *testing.T) {
	out, err := runCommand(t, "gen-config")
	require.NoError(t, err)

	parsed, err := config.LoadBytes([]byte(out), "toml")
	require.NoError(t, err)
	assert.NotEmpty(t, parsed.Rules)
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"auto": FormatAuto,
		"term": FormatTerminal,
		"text": FormatText,
		"json": FormatJSON,
		"yaml": FormatYAML,
		"":     FormatAuto,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err, "format %q", name)
		assert.Equal(t, want, got, "format %q", name)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}
