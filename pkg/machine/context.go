// Package machine captures the identity of the running machine as an
// immutable snapshot. Rule predicates are evaluated against this
// snapshot, never against live system state, so one inclusion-decision
// session sees a single consistent view.
package machine

import (
	"os"
	"os/user"
	"runtime"
	"strings"

	"github.com/dotsift/dotsift/pkg/errors"
	"github.com/dotsift/dotsift/pkg/logging"
)

// Context is the machine identity snapshot rule predicates test
// against. It is constructed once per session and never mutated, so
// concurrent readers need no synchronization.
type Context struct {
	Host string
	OS   OS
	User string
	Env  map[string]string
}

// Getenv looks up an environment variable in the snapshot. An absent
// variable is reported distinctly from a present-but-empty one.
func (c Context) Getenv(key string) (string, bool) {
	v, ok := c.Env[key]
	return v, ok
}

// Provider supplies the raw identity values a Context is built from.
// The default is SystemProvider; tests substitute fixed values.
type Provider interface {
	Hostname() (string, error)
	Platform() string
	Username() (string, error)
	Environ() map[string]string
}

// SystemProvider reads machine identity from the running process.
type SystemProvider struct{}

func (SystemProvider) Hostname() (string, error) {
	return os.Hostname()
}

func (SystemProvider) Platform() string {
	return runtime.GOOS
}

func (SystemProvider) Username() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	// Windows reports DOMAIN\name; rules match the bare name.
	name := u.Username
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	return name, nil
}

func (SystemProvider) Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Capture builds the Context snapshot from a provider. It fails when
// the hostname or user cannot be determined, or when the platform
// identifier cannot be classified.
func Capture(p Provider) (Context, error) {
	logger := logging.GetLogger("machine")

	host, err := p.Hostname()
	if err != nil {
		return Context{}, errors.Wrap(err, errors.ErrInternal, "cannot determine hostname")
	}

	class, err := ClassifyPlatform(p.Platform())
	if err != nil {
		return Context{}, err
	}

	username, err := p.Username()
	if err != nil {
		return Context{}, errors.Wrap(err, errors.ErrInternal, "cannot determine current user")
	}

	ctx := Context{
		Host: host,
		OS:   class,
		User: username,
		Env:  p.Environ(),
	}

	logger.Debug().
		Str("host", ctx.Host).
		Str("os", ctx.OS.String()).
		Str("user", ctx.User).
		Int("envVars", len(ctx.Env)).
		Msg("Captured machine context")

	return ctx, nil
}
