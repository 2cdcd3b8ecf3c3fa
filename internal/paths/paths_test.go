package paths

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHome points platform lookups at a fixed directory for one test.
func fakeHome(t *testing.T, home string) {
	t.Helper()
	saved := platformDir
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return filepath.Join(home, "AppConfig"), nil }
	t.Cleanup(func() { platformDir = saved })
}

func TestDefaultDirsLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}
	fakeHome(t, "/home/someone")

	tests := []struct {
		name    string
		env     string
		value   string
		resolve func() (string, error)
		want    string
	}{
		{"config from XDG", "XDG_CONFIG_HOME", "/tmp/xdg-config", DefaultConfigDir, "/tmp/xdg-config/fundiary"},
		{"config fallback", "XDG_CONFIG_HOME", "", DefaultConfigDir, "/home/someone/.config/fundiary"},
		{"data from XDG", "XDG_DATA_HOME", "/tmp/xdg-data", DefaultDataDir, "/tmp/xdg-data/fundiary"},
		{"data fallback", "XDG_DATA_HOME", "", DefaultDataDir, "/home/someone/.local/share/fundiary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			got, err := tt.resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultDirsOtherPlatforms(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Skip("non-linux test")
	}
	fakeHome(t, t.TempDir())

	cfg, err := DefaultConfigDir()
	require.NoError(t, err)
	data, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, cfg, data, "config and data share the user config dir")
	assert.Equal(t, appName, filepath.Base(cfg))
}

func TestDefaultDirHomeError(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}
	saved := platformDir
	platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
	t.Cleanup(func() { platformDir = saved })
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	_, err := DefaultConfigDir()
	assert.Error(t, err)
	_, err = DefaultDataDir()
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		envVal  string
		wantSub string // substring the result must contain
	}{
		{"flag wins over env", "/explicit/config", "/env/config", "/explicit/config"},
		{"env wins when flag empty", "", "/env/config", "/env/config"},
		{"platform default when both empty", "", "", appName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantSub)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	fakeHome(t, "/home/someone")
	t.Setenv("XDG_DATA_HOME", "")
	platformDefault, err := DefaultDataDir()
	require.NoError(t, err)

	tests := []struct {
		name          string
		flag          string
		configYAMLVal string
		envVal        string
		want          string
	}{
		{"flag wins over all", "/flag/data", "/config/data", "/env/data", "/flag/data"},
		{"config.yaml wins over env", "", "/config/data", "/env/data", "/config/data"},
		{"env wins when flag and config empty", "", "", "/env/data", "/env/data"},
		{"platform default when all empty", "", "", "", platformDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configYAMLVal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMakesPathsAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "")

	tests := []struct {
		name    string
		resolve func() (string, error)
	}{
		{"relative config flag", func() (string, error) { return ResolveConfigDir("relative/path") }},
		{"relative data flag", func() (string, error) { return ResolveDataDir("relative/path", "") }},
		{"relative config value", func() (string, error) { return ResolveDataDir("", "relative/config") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.resolve()
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
		})
	}

	t.Run("relative env", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "relative/env")
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, filepath.Join("cfg", "config.yaml"), ConfigFile("cfg"))
}
