package machine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotsift/dotsift/pkg/errors"
	"github.com/dotsift/dotsift/pkg/machine"
)

// fakeProvider supplies fixed identity values for tests.
type fakeProvider struct {
	host     string
	platform string
	user     string
	env      map[string]string
}

func (f fakeProvider) Hostname() (string, error) { return f.host, nil }
func (f fakeProvider) Platform() string { return f.platform }
func (f fakeProvider) Username() (string, error) { return f.user, nil }
func (f fakeProvider) Environ() map[string]string { return f.env }

func TestCapture(t *testing.T) {
	t.Run("builds_snapshot", func(t *testing.T) {
		ctx, err := machine.Capture(fakeProvider{
			host:     "nexus",
			platform: "linux",
			user:     "alice",
			env:      map[string]string{"TERM": "xterm-256color"},
		})
		require.NoError(t, err)

		assert.Equal(t, "nexus", ctx.Host)
		assert.Equal(t, machine.OSLinux, ctx.OS)
		assert.Equal(t, "alice", ctx.User)

		v, ok := ctx.Getenv("TERM")
		assert.True(t, ok)
		assert.Equal(t, "xterm-256color", v)
	})

	t.Run("absent_env_var", func(t *testing.T) {
		ctx, err := machine.Capture(fakeProvider{host: "nexus", platform: "darwin", user: "alice"})
		require.NoError(t, err)

		_, ok := ctx.Getenv("NOPE")
		assert.False(t, ok)
	})

	t.Run("unrecognized_platform_is_fatal", func(t *testing.T) {
		_, err := machine.Capture(fakeProvider{host: "nexus", platform: "vms", user: "alice"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPlatformUnknown))
	})
}

func TestSystemProvider(t *testing.T) {
	t.Setenv("DOTSIFT_TEST_VAR", "hello")

	env := machine.SystemProvider{}.Environ()
	assert.Equal(t, "hello", env["DOTSIFT_TEST_VAR"])

	// GOOS is always classifiable on platforms we build for.
	_, err := machine.ClassifyPlatform(machine.SystemProvider{}.Platform())
	assert.NoError(t, err)
}
