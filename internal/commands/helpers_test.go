package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/gastos/internal/id"
)

var fixedNow = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func testEnv(vars map[string]string) env {
	return env{
		now: func() time.Time { return fixedNow },
		ids: id.NewSequence("exp"),
		lookupEnv: func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		},
	}
}

// run executes the CLI in-process and returns what it printed.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runEnv(t, testEnv(nil), args...)
}

func runEnv(t *testing.T, e env, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(e)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// initProject creates a file-backed project holding the two sample records,
// exp-001 (Combustible, 342.935 gross) and exp-002 (Dietas tripulación, 48.364).
func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, _, err := run(t, "init", dir)
	require.NoError(t, err)
	return dir
}
