package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "eartrain", cmd.Use)
	assert.Contains(t, cmd.Long, "spaced-repetition")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"next", "answer", "status", "reset", "simulate", "validate", "curricula", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	clearEnv(t)
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	for name, def := range map[string]string{
		"format":     "text",
		"db":         "eartrain.db",
		"curriculum": "tone-pairs",
		"seed":       "0",
	} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, def, f.DefValue, name)
	}
}

func TestGlobalFlags_FromEnvironment(t *testing.T) {
	t.Setenv("EARTRAIN_DB", "/tmp/learner.db")
	t.Setenv("EARTRAIN_CURRICULUM", "note-identification")
	t.Setenv("EARTRAIN_SEED", "42")
	t.Setenv("EARTRAIN_FORMAT", "json")

	cmd := NewRootCommand()
	assert.Equal(t, "/tmp/learner.db", cmd.PersistentFlags().Lookup("db").DefValue)
	assert.Equal(t, "note-identification", cmd.PersistentFlags().Lookup("curriculum").DefValue)
	assert.Equal(t, "42", cmd.PersistentFlags().Lookup("seed").DefValue)
	assert.Equal(t, "json", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestInvalidEnvironment(t *testing.T) {
	t.Setenv("EARTRAIN_SEED", "not-a-number")

	_, err := execute(t, t.TempDir(), "curricula")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid environment")
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, t.TempDir(), "--format", "xml", "curricula")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Config{DB: "eartrain.db", Curriculum: "tone-pairs", Format: "text"}, cfg)
}

// clearEnv unsets every EARTRAIN_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"EARTRAIN_DB", "EARTRAIN_CURRICULUM", "EARTRAIN_SEED", "EARTRAIN_FORMAT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}
