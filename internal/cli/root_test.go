package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config using a temporary sqlite store and returns its
// path.
func writeConfig(t *testing.T, upstream string) string {
	t.Helper()
	dir := t.TempDir()
	if upstream == "" {
		upstream = "https://newsapi.org/v2"
	}
	data := fmt.Sprintf(`upstream_base_url: %q
store:
  driver: sqlite
  path: %q
`, upstream, filepath.Join(dir, "reader.db"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

type result struct {
	out    string
	errOut string
	err    error
}

func execute(t *testing.T, cfgPath, stdin string, args ...string) result {
	t.Helper()
	cmd := NewRootCommand("1.2.3")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func TestNewRootCommand(t *testing.T) {
	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.Equal(t, "news-reader", cmd.Use)
		assert.Equal(t, "1.0.0", cmd.Version)
	})

	t.Run("has persistent flags", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
		require.NotNil(t, cmd.PersistentFlags().Lookup("store"))
	})

	t.Run("has subcommands", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, name := range []string{"tui", "serve", "headlines", "bookmarks", "theme", "version"} {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, name)
			assert.Equal(t, name, sub.Name())
		}
	})

	t.Run("bookmarks alias", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		sub, _, err := cmd.Find([]string{"bm", "list"})
		require.NoError(t, err)
		assert.Equal(t, "list", sub.Name())
	})
}

func TestVersionCommand(t *testing.T) {
	r := execute(t, writeConfig(t, ""), "", "version")
	require.NoError(t, r.err)
	assert.Equal(t, "news-reader 1.2.3\n", r.out)
}

func TestThemeCommands(t *testing.T) {
	cfg := writeConfig(t, "")

	r := execute(t, cfg, "", "theme")
	require.NoError(t, r.err)
	assert.Equal(t, "light\n", r.out)

	r = execute(t, cfg, "", "theme", "toggle")
	require.NoError(t, r.err)
	assert.Equal(t, "dark\n", r.out)

	r = execute(t, cfg, "", "theme")
	require.NoError(t, r.err)
	assert.Equal(t, "dark\n", r.out)

	r = execute(t, cfg, "", "theme", "set", "light")
	require.NoError(t, r.err)
	assert.Equal(t, "light\n", r.out)

	r = execute(t, cfg, "", "theme", "set", "blue")
	assert.Error(t, r.err)
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("upstream_base_url: ftp://example.com\n"), 0o644))

	r := execute(t, path, "", "theme")
	assert.ErrorContains(t, r.err, "upstream_base_url")
}

func TestStoreOverride(t *testing.T) {
	cfg := writeConfig(t, "")

	r := execute(t, cfg, "", "--store", "memory", "theme", "toggle")
	require.NoError(t, r.err)
	assert.Equal(t, "dark\n", r.out)

	// the memory store did not persist, and the sqlite file was not touched
	r = execute(t, cfg, "", "theme")
	require.NoError(t, r.err)
	assert.Equal(t, "light\n", r.out)
}
