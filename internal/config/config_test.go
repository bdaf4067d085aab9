package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"map": { "zoom": 10 },
		"animation": { "stepDelay": "250ms" },
		"storage": { "type": "sqlite" }
	}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 10.0, GetMapConfig().Zoom)
	assert.Equal(t, 250*time.Millisecond, GetAnimationConfig().StepDelay)
	assert.Equal(t, "sqlite", GetStorageConfig().Type)
	// untouched keys keep their defaults
	assert.Equal(t, 42.2328, GetMapConfig().CenterLat)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", GetString("logLevel"))
	assert.Equal(t, "./buoylogs", GetString("logsDir"))

	m := GetMapConfig()
	assert.Equal(t, 42.2328, m.CenterLat)
	assert.Equal(t, -8.7226, m.CenterLng)
	assert.Equal(t, 12.0, m.Zoom)
	assert.Equal(t, 15.0, m.SelectZoom)
	assert.Equal(t, 1024, m.Width)
	assert.Equal(t, 768, m.Height)

	assert.Equal(t, time.Second, GetAnimationConfig().StepDelay)
	assert.Equal(t, TrackerConfig{Label: "MAD MAX", MinFocusZoom: 14}, GetTrackerConfig())
	assert.Equal(t, "Bouzas Norte", GetRouteConfig().FallbackStart)
	assert.Empty(t, GetRouteConfig().Definitions)

	g := GetGeolocationConfig()
	assert.Equal(t, "static", g.Provider)
	assert.Equal(t, 10*time.Second, g.Timeout)
	assert.Equal(t, "http://ip-api.com", g.Endpoint)
	assert.Equal(t, 5000.0, g.IPAccuracy)

	assert.Equal(t, StorageConfig{Type: "memory", Seed: true}, GetStorageConfig())
	assert.Equal(t, "gemini-2.5-flash", GetAssistantConfig().Model)

	o := GetOTelConfig()
	assert.False(t, o.Enabled)
	assert.Equal(t, "buoyplanner", o.ServiceName)
	assert.Equal(t, 30*time.Second, o.MetricInterval)

	assert.Equal(t, GraylogConfig{Enabled: false, Address: "localhost:12201"}, GetGraylogConfig())
	assert.Equal(t, 0, GetInt("missing"))
	assert.False(t, GetBool("missing"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults are still usable
	assert.Equal(t, "memory", GetStorageConfig().Type)
}

func TestLoad_InvalidJSON(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{ not json`))
	assert.Error(t, err)
}

func TestGetRouteConfig_Definitions(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"route": {
			"fallbackStart": "Lousal",
			"definitions": { "numeral1": ["Tofiño", "Subrido"] }
		}
	}`)))

	r := GetRouteConfig()
	assert.Equal(t, "Lousal", r.FallbackStart)
	assert.Equal(t, []string{"Tofiño", "Subrido"}, r.Definitions["numeral1"])
}

func TestGetAssistantConfig_Env(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("GEMINI_API_KEY", "from-env")

	SetDefaults()
	assert.Equal(t, "from-env", GetAssistantConfig().APIKey)
}

func TestSinkLevels(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"graylog": { "enabled": true, "level": "warn" },
		"otel": { "logLevel": "error" }
	}`)))

	assert.Equal(t, "warn", GetGraylogConfig().Level)
	assert.Equal(t, "error", GetOTelConfig().LogLevel)
	assert.Equal(t, "localhost:12201", GetGraylogConfig().Address)
}
