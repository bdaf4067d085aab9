package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "buoyplanner.cfg.json"

// MapConfig holds the initial viewport of the map surface.
type MapConfig struct {
	CenterLat  float64 `json:"centerLat" mapstructure:"centerLat"`
	CenterLng  float64 `json:"centerLng" mapstructure:"centerLng"`
	Zoom       float64 `json:"zoom" mapstructure:"zoom"`
	SelectZoom float64 `json:"selectZoom" mapstructure:"selectZoom"`
	Width      int     `json:"width" mapstructure:"width"`
	Height     int     `json:"height" mapstructure:"height"`
}

// AnimationConfig holds route animation timing.
type AnimationConfig struct {
	StepDelay time.Duration `json:"stepDelay" mapstructure:"stepDelay"`
}

// TrackerConfig holds live position presentation settings.
type TrackerConfig struct {
	Label        string  `json:"label" mapstructure:"label"`
	MinFocusZoom float64 `json:"minFocusZoom" mapstructure:"minFocusZoom"`
}

// RouteConfig holds route definitions and the fallback start waypoint.
// An empty Definitions map means the built-in table.
type RouteConfig struct {
	FallbackStart string              `json:"fallbackStart" mapstructure:"fallbackStart"`
	Definitions   map[string][]string `json:"definitions" mapstructure:"definitions"`
}

// GeolocationConfig selects and configures the position provider.
type GeolocationConfig struct {
	Provider string        `json:"provider" mapstructure:"provider"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`

	StaticLat      float64 `json:"staticLat" mapstructure:"staticLat"`
	StaticLng      float64 `json:"staticLng" mapstructure:"staticLng"`
	StaticAccuracy float64 `json:"staticAccuracy" mapstructure:"staticAccuracy"`

	Endpoint   string  `json:"endpoint" mapstructure:"endpoint"`
	APIKey     string  `json:"apiKey" mapstructure:"apiKey"`
	IPAccuracy float64 `json:"ipAccuracy" mapstructure:"ipAccuracy"`
}

// StorageConfig selects the session waypoint backend.
type StorageConfig struct {
	Type string `json:"type" mapstructure:"type"`
	Seed bool   `json:"seed" mapstructure:"seed"`
}

// AssistantConfig holds the conversational assistant settings.
type AssistantConfig struct {
	Model  string `json:"model" mapstructure:"model"`
	APIKey string `json:"apiKey" mapstructure:"apiKey"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName    string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout   time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	MetricInterval time.Duration `json:"metricInterval" mapstructure:"metricInterval"`
	Endpoint       string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `json:"insecure" mapstructure:"insecure"`
	LogLevel       string        `json:"logLevel" mapstructure:"logLevel"`
}

// GraylogConfig holds the GELF log sink settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
	Level   string `json:"level" mapstructure:"level"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers every default value and environment binding.
// Load calls it; callers that run without a config file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./buoylogs")

	viper.SetDefault("map.centerLat", 42.2328)
	viper.SetDefault("map.centerLng", -8.7226)
	viper.SetDefault("map.zoom", 12)
	viper.SetDefault("map.selectZoom", 15)
	viper.SetDefault("map.width", 1024)
	viper.SetDefault("map.height", 768)

	viper.SetDefault("animation.stepDelay", "1s")

	viper.SetDefault("tracker.label", "MAD MAX")
	viper.SetDefault("tracker.minFocusZoom", 14)

	viper.SetDefault("route.fallbackStart", "Bouzas Norte")

	viper.SetDefault("geolocation.provider", "static")
	viper.SetDefault("geolocation.timeout", "10s")
	viper.SetDefault("geolocation.staticLat", 42.2375)
	viper.SetDefault("geolocation.staticLng", -8.7268)
	viper.SetDefault("geolocation.staticAccuracy", 25)
	viper.SetDefault("geolocation.endpoint", "http://ip-api.com")
	viper.SetDefault("geolocation.apiKey", "")
	viper.SetDefault("geolocation.ipAccuracy", 5000)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.seed", true)

	viper.SetDefault("assistant.model", "gemini-2.5-flash")
	viper.SetDefault("assistant.apiKey", "")
	_ = viper.BindEnv("assistant.apiKey", "GEMINI_API_KEY", "API_KEY")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "buoyplanner")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricInterval", "30s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", false)
	viper.SetDefault("otel.logLevel", "")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
	viper.SetDefault("graylog.level", "")
}

// GetMapConfig returns the map viewport settings.
func GetMapConfig() MapConfig {
	return MapConfig{
		CenterLat:  viper.GetFloat64("map.centerLat"),
		CenterLng:  viper.GetFloat64("map.centerLng"),
		Zoom:       viper.GetFloat64("map.zoom"),
		SelectZoom: viper.GetFloat64("map.selectZoom"),
		Width:      viper.GetInt("map.width"),
		Height:     viper.GetInt("map.height"),
	}
}

// GetAnimationConfig returns the animation settings.
func GetAnimationConfig() AnimationConfig {
	return AnimationConfig{
		StepDelay: viper.GetDuration("animation.stepDelay"),
	}
}

// GetTrackerConfig returns the live position settings.
func GetTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Label:        viper.GetString("tracker.label"),
		MinFocusZoom: viper.GetFloat64("tracker.minFocusZoom"),
	}
}

// GetRouteConfig returns the route settings.
func GetRouteConfig() RouteConfig {
	return RouteConfig{
		FallbackStart: viper.GetString("route.fallbackStart"),
		Definitions:   viper.GetStringMapStringSlice("route.definitions"),
	}
}

// GetGeolocationConfig returns the position provider settings.
func GetGeolocationConfig() GeolocationConfig {
	return GeolocationConfig{
		Provider:       viper.GetString("geolocation.provider"),
		Timeout:        viper.GetDuration("geolocation.timeout"),
		StaticLat:      viper.GetFloat64("geolocation.staticLat"),
		StaticLng:      viper.GetFloat64("geolocation.staticLng"),
		StaticAccuracy: viper.GetFloat64("geolocation.staticAccuracy"),
		Endpoint:       viper.GetString("geolocation.endpoint"),
		APIKey:         viper.GetString("geolocation.apiKey"),
		IPAccuracy:     viper.GetFloat64("geolocation.ipAccuracy"),
	}
}

// GetStorageConfig returns the waypoint backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Seed: viper.GetBool("storage.seed"),
	}
}

// GetAssistantConfig returns the assistant settings.
func GetAssistantConfig() AssistantConfig {
	return AssistantConfig{
		Model:  viper.GetString("assistant.model"),
		APIKey: viper.GetString("assistant.apiKey"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
		LogLevel:       viper.GetString("otel.logLevel"),
	}
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
		Level:   viper.GetString("graylog.level"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
