package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dailygrace/dailygrace/internal/client/app"
	"github.com/dailygrace/dailygrace/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func TestRootCommand_Tree(t *testing.T) {
	root := NewRootCommand(testConfig())

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])

	for _, f := range []string{"db", "cloud-dsn", "policy", "tz", "addr", "config"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(f), "flag %s", f)
	}
}

func TestMigrateCommand_CreatesLocalDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	root := NewRootCommand(testConfig())
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"migrate", "--db", path})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "is up to date")

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRootCommand_ValidatesConfig(t *testing.T) {
	root := NewRootCommand(testConfig())
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate", "--policy", "newest"})

	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "unknown reconcile policy")
}

func TestWithApp_PropagatesOpenError(t *testing.T) {
	orig := newApp
	t.Cleanup(func() { newApp = orig })

	boom := errors.New("boom")
	newApp = func(context.Context, *config.Config) (*app.App, error) { return nil, boom }

	called := false
	err := withApp(context.Background(), testConfig(), func(context.Context, *app.App) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}
