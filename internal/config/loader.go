package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mhpenta/planviz"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PLANVIZ_SERVER_ADDR.
const EnvPrefix = "PLANVIZ"

// Load reads configuration in priority order: defaults, the YAML file at path
// (optional), then environment variables. A .env file in the working directory
// is loaded into the environment first; existing variables win over it.
//
// v may carry flag bindings from the CLI; nil means a fresh viper instance.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// bindLegacyEnv lets the unprefixed variable names override their keys.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"gemini.api_key":     {"PLANVIZ_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"gemini.text_model":  {"PLANVIZ_GEMINI_TEXT_MODEL", "GEMINI_MODEL"},
		"gemini.image_model": {"PLANVIZ_GEMINI_IMAGE_MODEL", "IMAGEN_MODEL"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.text_model", planviz.DefaultTextModel)
	v.SetDefault("gemini.image_model", planviz.DefaultImageModel)
	v.SetDefault("gemini.timeout", "120s")
	v.SetDefault("gemini.safety_threshold", "")
	v.SetDefault("gemini.thinking", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.max_upload_bytes", 2*planviz.MaxImageSize+1<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("output.dir", "renders")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.service_name", "planviz")
	v.SetDefault("telemetry.sample_rate", 1.0)

	v.SetDefault("metrics.namespace", "planviz")
}
