package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductsCmd_ListsDefaultCatalog(t *testing.T) {
	// GIVEN the root command with no scenario file
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"products", "--config", ""})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	// WHEN executed
	require.NoError(t, rootCmd.Execute())

	// THEN the reference products are printed
	out := buf.String()
	for _, name := range []string{"C 180", "E 200", "S 600"} {
		assert.Contains(t, out, name)
	}
}

func TestRunCmd_InvalidLogLevel(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"run", "--log", "loud", "--scenario", "single"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		logLevel = "warn"
	})

	assert.Error(t, rootCmd.Execute())
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv(EnvMachines, "9")
	assert.Equal(t, 9, getEnvInt(EnvMachines, 6))

	t.Setenv(EnvMachines, "nine")
	assert.Equal(t, 6, getEnvInt(EnvMachines, 6))

	t.Setenv(EnvSeed, "")
	assert.Equal(t, int64(42), getEnvInt64(EnvSeed, 42))
}
