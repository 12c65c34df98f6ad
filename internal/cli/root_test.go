package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "rollcall", cmd.Use)
	assert.Contains(t, cmd.Long, "attendance")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"init"}, {"import"}, {"export"}, {"template"}, {"mark"}, {"summary"}, {"status"},
		{"attendee", "add"}, {"attendee", "update"}, {"attendee", "delete"}, {"attendee", "list"}, {"attendee", "next-id"},
		{"event", "add"}, {"event", "update"}, {"event", "delete"}, {"event", "list"}, {"event", "next-id"},
		{"event", "rates"}, {"event", "types"}, {"event", "select"},
		{"events", "rates"},
	}

	for _, path := range commands {
		t.Run(filepath.Join(path...), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, DefaultDatabase, dbFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("cache-key"))
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"status", "--format", "xml", "--db", filepath.Join(t.TempDir(), "x.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "rollcall.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: "+db+"\nformat: json\n"), 0o644))

	t.Run("config supplies defaults", func(t *testing.T) {
		out, err := execute(t, "", "--config", cfgPath, "init")
		require.NoError(t, err)
		assert.Contains(t, out, `"status":"ok"`)

		_, err = os.Stat(db)
		assert.NoError(t, err, "database named in config was not created")
	})

	t.Run("flags win over config", func(t *testing.T) {
		out, err := execute(t, "", "--config", cfgPath, "--format", "text", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Database:  "+db)
	})
}

func TestConfigUnknownKey(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "rollcall.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("databse: typo.db\n"), 0o644))

	_, err := LoadConfig(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "databse")

	_, err = execute(t, "", "--config", cfgPath, "status")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadConfig_Empty(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o644))

	cfg, err := LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, Config{}, *cfg)
}
