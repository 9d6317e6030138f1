package apply

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Mode is how a skill is projected into an agent directory
type Mode string

// Apply modes
const (
	ModeSymlink Mode = "symlink"
	ModeCopy    Mode = "copy"
)

var _ pflag.Value = (*Mode)(nil)

// ParseMode converts a user supplied mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSymlink, ModeCopy:
		return Mode(s), nil
	}
	return "", errors.Errorf("invalid apply mode %q (expected %q or %q)", s, ModeSymlink, ModeCopy)
}

func (m *Mode) String() string {
	return string(*m)
}

// Set implements pflag.Value
func (m *Mode) Set(s string) error {
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value
func (m *Mode) Type() string {
	return "symlink|copy"
}
