package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, TransportCurl, cfg.Transport)
	assert.Equal(t, 30000, cfg.Timeout)
	assert.Equal(t, int64(10<<20), cfg.MaxOutputBytes)
	assert.False(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetHistory())
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.True(t, cfg.IsDefault())
	assert.NoError(t, cfg.Validate())
}

func TestGetBoolDefaults(t *testing.T) {
	cfg := &Config{}

	assert.False(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetHistory())
	assert.False(t, cfg.GetVerbose())
	assert.False(t, cfg.GetNoColor())

	cfg.History = BoolPtr(false)
	assert.False(t, cfg.GetHistory())
}

func TestFindAndLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "transport": "native",
  "timeout": 5000,
  "followRedirects": true,
  "headers": {"User-Agent": "hitcurl-test"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hitcurl.json"), []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, TransportNative, cfg.Transport)
	assert.Equal(t, 5000, cfg.Timeout)
	assert.True(t, cfg.GetFollowRedirects())
	assert.Equal(t, "hitcurl-test", cfg.Headers["User-Agent"])
	assert.Equal(t, DefaultMaxRedirects, cfg.MaxRedirects, "unset fields keep defaults")
	assert.False(t, cfg.IsDefault())
}

func TestFindAndLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	content := `transport: curl
curlPath: /usr/local/bin/curl
maxOutputBytes: 2048
history: false
logLevel: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hitcurl.yml"), []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/curl", cfg.CurlPath)
	assert.Equal(t, int64(2048), cfg.MaxOutputBytes)
	assert.False(t, cfg.GetHistory())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFindAndLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hitcurl.json"), []byte(`{"timeout": 1000}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hitcurl.yaml"), []byte("timeout: 2000\n"), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Timeout)
}

func TestFindAndLoadConfig_NoFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"Accept": "*/*", "X-Base": "1"}

	merged := base.Merge(&Config{
		Transport:       TransportNative,
		Timeout:         2500,
		FollowRedirects: BoolPtr(true),
		Headers:         map[string]string{"Accept": "application/json"},
	})

	assert.Equal(t, TransportNative, merged.Transport)
	assert.Equal(t, 2500, merged.Timeout)
	assert.True(t, merged.GetFollowRedirects())
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Base": "1"}, merged.Headers)
	assert.Equal(t, "*/*", base.Headers["Accept"], "base must not be modified")
	assert.Equal(t, DefaultHistoryLimit, merged.HistoryLimit)

	assert.Same(t, base, base.Merge(nil))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport = "telnet"
	cfg.Timeout = -1
	cfg.HistoryLimit = -5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown transport "telnet"`)
	assert.Contains(t, err.Error(), "timeout must not be negative")
	assert.Contains(t, err.Error(), "historyLimit must not be negative")

	cfg = DefaultConfig()
	cfg.Transport = "Native"
	assert.NoError(t, cfg.Validate())
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"hitcurl.json", "hitcurl.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Proxy = "http://proxy:3128"
			cfg.Verbose = BoolPtr(true)

			require.NoError(t, cfg.SaveConfig(path))
			loaded, err := LoadConfig(path)
			require.NoError(t, err)

			assert.Equal(t, "http://proxy:3128", loaded.Proxy)
			assert.True(t, loaded.GetVerbose())
		})
	}
}
