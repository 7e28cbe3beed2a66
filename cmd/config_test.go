package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntP("threads", "t", 1000, "")
	flags.BoolP("simple", "s", false, "")
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("cdnfile", "c", "", "")
	flags.BoolP("progressbar", "p", false, "")
	flags.Int("rate", 0, "")
	flags.Duration("timeout", defaultTimeout, "")
	return flags
}

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "VODRECOVER_CDNFILE", envName("cdnfile"))
	assert.Equal(t, "VODRECOVER_PROGRESS_BAR", envName("progress-bar"))
}

func TestApplyEnvFillsUnsetFlags(t *testing.T) {
	inTempDir(t)
	t.Setenv("VODRECOVER_THREADS", "50")
	t.Setenv("VODRECOVER_RATE", "200")
	t.Setenv("VODRECOVER_TIMEOUT", "3s")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--rate", "10"}))
	require.NoError(t, applyEnv(flags))

	o, err := readOptions(flags)
	require.NoError(t, err)
	assert.Equal(t, 50, o.threads)
	assert.Equal(t, 10, o.rate, "command line wins over the environment")
	assert.Equal(t, 3*time.Second, o.timeout)
}

func TestApplyEnvReadsDotEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VODRECOVER_SIMPLE=true\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("VODRECOVER_SIMPLE") })

	flags := testFlags()
	require.NoError(t, flags.Parse(nil))
	require.NoError(t, applyEnv(flags))

	o, err := readOptions(flags)
	require.NoError(t, err)
	assert.True(t, o.simple)
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	inTempDir(t)
	t.Setenv("VODRECOVER_THREADS", "lots")

	flags := testFlags()
	require.NoError(t, flags.Parse(nil))
	assert.Error(t, applyEnv(flags))
}

func TestReadOptionsValidatesThreads(t *testing.T) {
	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"-t", "0"}))
	_, err := readOptions(flags)
	assert.Error(t, err)
}
