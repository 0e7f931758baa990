// Package config loads poster2web settings from a YAML file, a .env file
// and POSTER2WEB_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/thywilljoshua/poster-to-web/internal/export"
)

const (
	envPrefix = "POSTER2WEB"
	fileName  = "poster2web"
)

type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	AI     AIConfig     `mapstructure:"ai" yaml:"ai"`
	Export ExportConfig `mapstructure:"export" yaml:"export"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// MaxUploadMB caps the size of an uploaded poster.
	MaxUploadMB int64 `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

type AIConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"`
	Model     string `mapstructure:"model" yaml:"model"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	Exclusive bool   `mapstructure:"exclusive" yaml:"exclusive"`
}

// Enabled reports whether an AI provider is selected.
func (a AIConfig) Enabled() bool {
	return a.Provider != "" && !strings.EqualFold(a.Provider, "off")
}

type ExportConfig struct {
	Format       string `mapstructure:"format" yaml:"format"`
	OutDir       string `mapstructure:"out_dir" yaml:"out_dir"`
	SiteName     string `mapstructure:"site_name" yaml:"site_name"`
	SlugPrefix   string `mapstructure:"slug_prefix" yaml:"slug_prefix"`
	ColorScheme  string `mapstructure:"color_scheme" yaml:"color_scheme"`
	Primary      string `mapstructure:"primary" yaml:"primary"`
	Secondary    string `mapstructure:"secondary" yaml:"secondary"`
	Font         string `mapstructure:"font" yaml:"font"`
	HeadlineSize int    `mapstructure:"headline_size" yaml:"headline_size"`
	BodySize     int    `mapstructure:"body_size" yaml:"body_size"`
	Layout       string `mapstructure:"layout" yaml:"layout"`
	Logo         string `mapstructure:"logo" yaml:"logo"`
	LogoPosition string `mapstructure:"logo_position" yaml:"logo_position"`
}

// Style converts the export settings into render options.
func (e ExportConfig) Style() export.Style {
	return export.Style{
		ColorScheme:  e.ColorScheme,
		Primary:      e.Primary,
		Secondary:    e.Secondary,
		Font:         e.Font,
		HeadlineSize: e.HeadlineSize,
		BodySize:     e.BodySize,
		Layout:       e.Layout,
		Logo:         e.Logo,
		LogoPosition: e.LogoPosition,
	}
}

func setDefaults(v *viper.Viper) {
	st := export.DefaultStyle()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.path", "poster2web.db")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 50)
	v.SetDefault("ai.provider", "off")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.exclusive", false)
	v.SetDefault("export.format", string(export.Standalone))
	v.SetDefault("export.out_dir", ".")
	v.SetDefault("export.site_name", "")
	v.SetDefault("export.slug_prefix", "")
	v.SetDefault("export.color_scheme", st.ColorScheme)
	v.SetDefault("export.primary", "")
	v.SetDefault("export.secondary", "")
	v.SetDefault("export.font", st.Font)
	v.SetDefault("export.headline_size", st.HeadlineSize)
	v.SetDefault("export.body_size", st.BodySize)
	v.SetDefault("export.layout", st.Layout)
	v.SetDefault("export.logo", "")
	v.SetDefault("export.logo_position", st.LogoPosition)
}

// Load reads the configuration. With file empty, poster2web.yaml is looked
// up in the working directory and ~/.config/poster2web; a missing file is
// not an error. A named file must exist.
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", fileName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Gemini SDK's own variable works as a fallback for the key.
	if err := v.BindEnv("ai.api_key", envPrefix+"_AI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format)
	}
	switch strings.ToLower(c.AI.Provider) {
	case "", "off", "gemini":
	default:
		return fmt.Errorf("ai.provider: must be off or gemini, got %q", c.AI.Provider)
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if _, err := c.Export.Style().Resolve(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// NewLogger builds the process logger described by the log settings.
func (l LogConfig) NewLogger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	if l.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}
