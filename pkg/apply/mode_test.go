package apply

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("copy")
	require.NoError(t, err)
	assert.Equal(t, ModeCopy, m)

	_, err = ParseMode("Symlink")
	assert.Error(t, err)
}

func TestModeAsFlag(t *testing.T) {
	mode := ModeSymlink
	fs := pflag.NewFlagSet("apply", pflag.ContinueOnError)
	fs.VarP(&mode, "mode", "m", "apply mode")

	require.NoError(t, fs.Parse([]string{"-m", "copy"}))
	assert.Equal(t, ModeCopy, mode)
	assert.Equal(t, "copy", fs.Lookup("mode").Value.String())

	err := fs.Parse([]string{"--mode", "hardlink"})
	require.Error(t, err)
	assert.Equal(t, ModeCopy, mode)
}
