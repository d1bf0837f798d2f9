package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/require"
)

func isolateConfigHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", home)
	xdg.Reload()
	return home
}

func TestInitConfig(t *testing.T) {
	t.Run("no file yields the defaults", func(t *testing.T) {
		isolateConfigHome(t)

		c, err := InitConfig()

		require.NoError(t, err)
		require.Equal(t, DefaultConfig, *c)
	})

	t.Run("a config file overrides the defaults", func(t *testing.T) {
		home := isolateConfigHome(t)
		dir := filepath.Join(home, "gomoku")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		body := []byte(`{"board_size": 9, "goroutines": 2, "iterations": 500}`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), body, 0o644))

		c, err := InitConfig()

		require.NoError(t, err)
		require.Equal(t, 9, c.BoardSize)
		require.Equal(t, 2, c.Goroutines)
		require.Equal(t, 500, c.Iterations)
		require.Equal(t, DefaultConfig.ListenAddr, c.ListenAddr, "Unset fields keep their defaults")
	})

	t.Run("out-of-range settings are rejected", func(t *testing.T) {
		home := isolateConfigHome(t)
		dir := filepath.Join(home, "gomoku")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		body := []byte(`{"board_size": 2}`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), body, 0o644))

		_, err := InitConfig()

		require.ErrorContains(t, err, "board size")
	})

	t.Run("a file that cannot be read is reported", func(t *testing.T) {
		home := isolateConfigHome(t)
		require.NoError(t, os.MkdirAll(filepath.Join(home, "gomoku", "config.json"), 0o755))

		_, err := InitConfig()

		require.ErrorContains(t, err, "reading")
		require.ErrorContains(t, err, "config.json")
	})
}

func TestValidate(t *testing.T) {
	t.Run("an unbounded search is refused", func(t *testing.T) {
		c := DefaultConfig
		c.Iterations = 0
		c.MaxTimeSeconds = 0

		require.ErrorContains(t, c.Validate(), "budget")
	})

	t.Run("a time budget alone is enough", func(t *testing.T) {
		c := DefaultConfig
		c.Iterations = 0
		c.MaxTimeSeconds = 1.5

		require.NoError(t, c.Validate())
	})
}

func TestSave(t *testing.T) {
	home := isolateConfigHome(t)

	c := DefaultConfig
	c.BoardSize = 9
	require.NoError(t, c.Save())

	saved, err := InitConfig()
	require.NoError(t, err)
	require.Equal(t, c, *saved)
	require.FileExists(t, filepath.Join(home, "gomoku", "config.json"))
}

func TestMaxTime(t *testing.T) {
	c := DefaultConfig
	require.Zero(t, c.MaxTime())

	c.MaxTimeSeconds = 0.25
	require.Equal(t, "250ms", c.MaxTime().String())
}
