package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// dirName is the per-user state directory under $HOME.
const dirName = ".churnlens"

// Global configuration structure.
type Global struct {
	SessionDir string `mapstructure:"session_dir" yaml:"session_dir" validate:"required"`

	// Views
	PageSize      int `mapstructure:"page_size" yaml:"page_size" validate:"oneof=10 25 50 100"`
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"min=1,max=100"`
	RangeBins     int `mapstructure:"range_bins" yaml:"range_bins" validate:"min=1,max=100"`
	TopK          int `mapstructure:"top_k" yaml:"top_k" validate:"min=1,max=1000"`
	CrossTabTopK  int `mapstructure:"crosstab_top_k" yaml:"crosstab_top_k" validate:"min=1,max=1000"`

	OutputFormat string `mapstructure:"output_format" yaml:"output_format" validate:"oneof=markdown md json yaml yml"`

	// HTTP API
	ListenAddr  string   `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" validate:"dive,required"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"session_dir", "page_size", "histogram_bins", "range_bins", "top_k",
	"crosstab_top_k", "output_format", "listen_addr", "cors_origins",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report config keys rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Dir returns ~/.churnlens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.churnlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CHURNLENS")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("session_dir", "")
	v.SetDefault("page_size", 10)
	v.SetDefault("histogram_bins", 10)
	v.SetDefault("range_bins", 8)
	v.SetDefault("top_k", 10)
	v.SetDefault("crosstab_top_k", 8)
	v.SetDefault("output_format", "markdown")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("cors_origins", []string{"*"})

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a present but malformed file is an error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve session_dir default: ~/.churnlens/session
	if c.SessionDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.SessionDir = filepath.Join(dir, "session")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
