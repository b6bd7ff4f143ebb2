package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/tutoradmin/internal/core"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t,
		[]string{"serve", "sync", "recalculate", "schedule", "rebuild-headers", "tables"},
		names)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NotNil(t, serve.Flags().Lookup("config"))
	require.NotNil(t, serve.Flags().Lookup("env-file"))
}

func TestTablesCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"tables"})

	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, len(core.All())+1, len(lines))
	require.Contains(t, lines[0], "TABLE")
	require.Contains(t, out.String(), "tutorRegistrationForm")
}

// runBatch executes a batch command against a fresh csv store in dir.
func runBatch(t *testing.T, dir string, args ...string) string {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "csv")
	t.Setenv("STORAGE_DATA_DIR", dir)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs(append(args, "--env-file", filepath.Join(dir, "missing.env")))

	require.NoError(t, root.Execute())
	return out.String()
}

func TestBatchCommands(t *testing.T) {
	dir := t.TempDir()

	var sync core.SyncResult
	require.NoError(t, json.Unmarshal([]byte(runBatch(t, dir, "sync")), &sync))
	require.Equal(t, 0, sync.Total)

	var recalc core.AttendanceResult
	require.NoError(t, json.Unmarshal([]byte(runBatch(t, dir, "recalculate")), &recalc))
	require.Equal(t, 0, recalc.Changes)

	var slots []core.ScheduleSlot
	require.NoError(t, json.Unmarshal([]byte(runBatch(t, dir, "schedule")), &slots))
	require.Len(t, slots, core.MaxMod)

	out := runBatch(t, dir, "rebuild-headers", "tutors", "learners")
	require.Contains(t, out, `"tutors"`)

	// setup initialised one csv file per registered table
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	require.NoError(t, err)
	require.Len(t, files, len(core.All()))
}

func TestBatchCommand_UnknownTable(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"rebuild-headers", "nope", "--env-file", filepath.Join(dir, "missing.env")})

	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "SCH001")
}
