package machine

import (
	"strings"

	"github.com/dotsift/dotsift/pkg/errors"
)

// OS identifies the operating system family a machine belongs to.
// Rules use these coarse classes rather than exact platform strings.
type OS string

const (
	OSWindows OS = "windows"
	OSOSX     OS = "osx"
	OSLinux   OS = "linux"
	OSUnix    OS = "unix"
)

// Valid reports whether o is one of the known OS classes.
func (o OS) Valid() bool {
	switch o {
	case OSWindows, OSOSX, OSLinux, OSUnix:
		return true
	}
	return false
}

// String returns the configuration-facing name of the class.
func (o OS) String() string {
	return string(o)
}

// DisplayName returns the human-facing name used when rendering rule
// predicates.
func (o OS) DisplayName() string {
	switch o {
	case OSWindows:
		return "Windows"
	case OSOSX:
		return "OS X"
	case OSLinux:
		return "Linux"
	case OSUnix:
		return "Unix"
	}
	return string(o)
}

// ParseOS validates a configuration value against the fixed OS-class
// set.
func ParseOS(s string) (OS, error) {
	o := OS(strings.ToLower(s))
	if !o.Valid() {
		return "", errors.Newf(errors.ErrOSClassInvalid,
			"unknown os class %q (must be one of windows, osx, linux, unix)", s)
	}
	return o, nil
}

// ClassifyPlatform maps a platform identifier (a GOOS value or a
// uname-style string) onto an OS class. An identifier that matches no
// known family is fatal: os-keyed rules cannot be evaluated without a
// class.
func ClassifyPlatform(identifier string) (OS, error) {
	id := strings.ToLower(identifier)
	switch {
	case containsAny(id, "mswin", "windows", "cygwin", "mingw", "bccwin", "wince"):
		return OSWindows, nil
	case containsAny(id, "darwin", "mac os", "macos"):
		return OSOSX, nil
	case strings.Contains(id, "linux"):
		return OSLinux, nil
	case containsAny(id, "solaris", "bsd", "dragonfly", "illumos", "aix"):
		return OSUnix, nil
	}
	return "", errors.Newf(errors.ErrPlatformUnknown, "cannot classify platform %q", identifier)
}

func containsAny(s string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
