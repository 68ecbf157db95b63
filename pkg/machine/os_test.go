package machine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotsift/dotsift/pkg/errors"
	"github.com/dotsift/dotsift/pkg/machine"
)

func TestClassifyPlatform(t *testing.T) {
	tests := []struct {
		identifier string
		want       machine.OS
	}{
		{"windows", machine.OSWindows},
		{"mingw32", machine.OSWindows},
		{"cygwin", machine.OSWindows},
		{"x86_64-pc-mswin64", machine.OSWindows},
		{"darwin", machine.OSOSX},
		{"darwin23", machine.OSOSX},
		{"Mac OS X", machine.OSOSX},
		{"linux", machine.OSLinux},
		{"linux-gnu", machine.OSLinux},
		{"solaris2.11", machine.OSUnix},
		{"freebsd14.0", machine.OSUnix},
		{"openbsd", machine.OSUnix},
		{"dragonfly", machine.OSUnix},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			got, err := machine.ClassifyPlatform(tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyPlatform_Unrecognized(t *testing.T) {
	_, err := machine.ClassifyPlatform("plan9")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPlatformUnknown))
}

func TestParseOS(t *testing.T) {
	t.Run("valid_classes", func(t *testing.T) {
		for _, name := range []string{"windows", "osx", "linux", "unix"} {
			got, err := machine.ParseOS(name)
			require.NoError(t, err)
			assert.Equal(t, name, got.String())
		}
	})

	t.Run("folds_case", func(t *testing.T) {
		got, err := machine.ParseOS("Linux")
		require.NoError(t, err)
		assert.Equal(t, machine.OSLinux, got)
	})

	t.Run("rejects_unknown_class", func(t *testing.T) {
		_, err := machine.ParseOS("beos")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrOSClassInvalid))
	})
}

func TestOS_DisplayName(t *testing.T) {
	assert.Equal(t, "OS X", machine.OSOSX.DisplayName())
	assert.Equal(t, "Windows", machine.OSWindows.DisplayName())
	assert.Equal(t, "Linux", machine.OSLinux.DisplayName())
	assert.Equal(t, "Unix", machine.OSUnix.DisplayName())
}
