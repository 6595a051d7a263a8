package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	DataDir    string         `mapstructure:"data_dir" yaml:"data_dir"`
	Server     ServerConfig   `mapstructure:"server" yaml:"server"`
	Filter     FilterDefaults `mapstructure:"filter" yaml:"filter"`
	Montage    string         `mapstructure:"montage" yaml:"montage"`
	Bands      []Band         `mapstructure:"bands" yaml:"bands"`
	Extensions []string       `mapstructure:"supported_extensions" yaml:"supported_extensions"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// FilterDefaults seeds the filter controls; 0 disables the corresponding
// default.
type FilterDefaults struct {
	HighPass float64 `mapstructure:"high_pass" yaml:"high_pass"`
	LowPass  float64 `mapstructure:"low_pass" yaml:"low_pass"`
	Notch    float64 `mapstructure:"notch" yaml:"notch"` // 60 for US mains, 50 for Europe
}

// Band is one named frequency band definition.
type Band struct {
	Name string  `mapstructure:"name" yaml:"name"`
	Low  float64 `mapstructure:"low" yaml:"low"`
	High float64 `mapstructure:"high" yaml:"high"`
}

var defaultConfig = Config{
	DataDir: filepath.Join(os.Getenv("HOME"), ".local", "share", "eegviz"),
	Server:  ServerConfig{Port: 8808},
	Filter: FilterDefaults{
		HighPass: 1.0,
		LowPass:  45.0,
		Notch:    60.0,
	},
	Montage: "standard_1020",
	Bands: []Band{
		{Name: "Delta", Low: 1.0, High: 4.0},
		{Name: "Theta", Low: 4.0, High: 8.0},
		{Name: "Alpha", Low: 8.0, High: 13.0},
		{Name: "Beta", Low: 13.0, High: 30.0},
		{Name: "Gamma", Low: 30.0, High: 45.0},
	},
	Extensions: []string{"edf", "bdf", "json"},
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	cfg := defaultConfig
	cfg.Bands = append([]Band(nil), defaultConfig.Bands...)
	cfg.Extensions = append([]string(nil), defaultConfig.Extensions...)
	return &cfg
}

// Load reads the configuration file, merges it over the defaults and
// validates the result. An empty configFile yields the defaults.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)
		v.SetEnvPrefix("EEGVIZ")
		v.AutomaticEnv()

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}

		// Decode into a zero struct and overlay only the keys the file
		// actually sets, so a file-provided band table replaces the
		// defaults wholesale instead of merging element-wise.
		var file Config
		if err := v.Unmarshal(&file); err != nil {
			return nil, fmt.Errorf("error unmarshaling config: %w", err)
		}
		if v.IsSet("data_dir") {
			cfg.DataDir = file.DataDir
		}
		if v.IsSet("server.port") {
			cfg.Server.Port = file.Server.Port
		}
		if v.IsSet("filter.high_pass") {
			cfg.Filter.HighPass = file.Filter.HighPass
		}
		if v.IsSet("filter.low_pass") {
			cfg.Filter.LowPass = file.Filter.LowPass
		}
		if v.IsSet("filter.notch") {
			cfg.Filter.Notch = file.Filter.Notch
		}
		if v.IsSet("montage") {
			cfg.Montage = file.Montage
		}
		if v.IsSet("bands") {
			cfg.Bands = file.Bands
		}
		if v.IsSet("supported_extensions") {
			cfg.Extensions = file.Extensions
		}
	}

	cfg.DataDir = expandPath(cfg.DataDir)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the cross-field constraints of a configuration.
func Validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", cfg.Server.Port)
	}
	if err := validateFilterDefaults(cfg.Filter); err != nil {
		return err
	}
	return validateBands(cfg.Bands)
}

// BandByName resolves a configured band, case-insensitively.
func (c *Config) BandByName(name string) (Band, error) {
	for _, b := range c.Bands {
		if strings.EqualFold(b.Name, name) {
			return b, nil
		}
	}
	names := make([]string, len(c.Bands))
	for i, b := range c.Bands {
		names[i] = b.Name
	}
	return Band{}, fmt.Errorf("unknown band %q (configured: %s)", name, strings.Join(names, ", "))
}

func validateFilterDefaults(f FilterDefaults) error {
	if f.HighPass < 0 {
		return fmt.Errorf("filter.high_pass must be >= 0, got %g", f.HighPass)
	}
	if f.LowPass < 0 {
		return fmt.Errorf("filter.low_pass must be >= 0, got %g", f.LowPass)
	}
	if f.HighPass > 0 && f.LowPass > 0 && f.HighPass >= f.LowPass {
		return fmt.Errorf("filter.high_pass (%g) must be < filter.low_pass (%g)", f.HighPass, f.LowPass)
	}
	if f.Notch < 0 {
		return fmt.Errorf("filter.notch must be >= 0, got %g", f.Notch)
	}
	return nil
}

func validateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("bands cannot be empty")
	}

	seen := make(map[string]bool, len(bands))
	for i, b := range bands {
		if b.Name == "" {
			return fmt.Errorf("bands[%d]: 'name' is required", i)
		}
		key := strings.ToLower(b.Name)
		if seen[key] {
			return fmt.Errorf("bands[%d]: duplicate band name %q", i, b.Name)
		}
		seen[key] = true

		if b.Low < 0 {
			return fmt.Errorf("bands[%d] %q: 'low' must be >= 0, got %g", i, b.Name, b.Low)
		}
		if b.High <= b.Low {
			return fmt.Errorf("bands[%d] %q: 'high' (%g) must be > 'low' (%g)", i, b.Name, b.High, b.Low)
		}
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
