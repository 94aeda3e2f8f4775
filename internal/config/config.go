// Package config loads server configuration from a YAML file under the
// given directory, with environment variable overrides for deployment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	AI     AIConfig     `mapstructure:"ai"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"` // debug / release
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DBConfig struct {
	Path          string `mapstructure:"path"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// AIConfig points at the generative AI upstream. An empty APIKey means the
// assistant is not activated; chat requests are rejected until a key is set.
type AIConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	Model         string `mapstructure:"model"`
	TTSModel      string `mapstructure:"tts_model"`
	TTSSampleRate int    `mapstructure:"tts_sample_rate"`
	Voice         bool   `mapstructure:"voice"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVariables(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine; defaults and env vars carry the config.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("db.path", "DB_PATH")
	v.BindEnv("db.migrations_dir", "MIGRATIONS_DIR")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("ai.api_key", "AI_API_KEY")
	v.BindEnv("ai.base_url", "AI_BASE_URL")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})

	v.SetDefault("db.path", "./data/joylife.db")
	v.SetDefault("db.migrations_dir", "./migrations")

	v.SetDefault("jwt.secret", "change-this-secret")
	v.SetDefault("jwt.token_ttl", "72h")

	v.SetDefault("ai.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.tts_model", "gemini-2.5-flash-preview-tts")
	v.SetDefault("ai.tts_sample_rate", 24000)
	v.SetDefault("ai.voice", false)
}
