package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/luhtfiimanal/go-poketrader/protocol"
	"github.com/luhtfiimanal/go-poketrader/serial"
)

// EnvPrefix prefixes environment overrides, e.g. POKETRADER_SERIAL_PORT.
const EnvPrefix = "POKETRADER"

// Config holds application configuration.
type Config struct {
	Serial  SerialConfig  `mapstructure:"serial"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

// SerialConfig holds link settings.
type SerialConfig struct {
	Port        string        `mapstructure:"port"`
	BaudRate    int           `mapstructure:"baud_rate"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	Delimiter   string        `mapstructure:"delimiter"`
	Transport   string        `mapstructure:"transport"`
}

// SessionConfig holds controller settings.
type SessionConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	QueueSize    int           `mapstructure:"queue_size"`
	TradeRole    string        `mapstructure:"trade_role"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud_rate", serial.DefaultBaudRate)
	v.SetDefault("serial.read_timeout", serial.DefaultReadTimeout)
	v.SetDefault("serial.delimiter", serial.DefaultDelimiter)
	v.SetDefault("serial.transport", serial.DefaultTransport)
	v.SetDefault("session.poll_interval", 100*time.Millisecond)
	v.SetDefault("session.queue_size", 256)
	v.SetDefault("session.trade_role", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
}

// DefaultPath returns ~/.config/poketrader/config.toml.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "poketrader", "config.toml")
}

// Load reads configuration from file and env. The file is path if given,
// else $POKETRADER_CONFIG, else DefaultPath; a missing file is not an error.
// Env var overrides use prefix POKETRADER_.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the link or the device cannot work with.
func (c Config) Validate() error {
	switch c.Serial.BaudRate {
	case 9600, 19200, 38400, 57600, 115200, 230400:
	default:
		return fmt.Errorf("serial.baud_rate: unsupported value %d", c.Serial.BaudRate)
	}
	if c.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("serial.read_timeout must be positive")
	}
	if c.Serial.Delimiter == "" {
		return fmt.Errorf("serial.delimiter must not be empty")
	}
	if _, err := serial.OpenerFor(c.Serial.Transport); err != nil {
		return fmt.Errorf("serial.transport: %w", err)
	}
	if c.Session.PollInterval <= 0 {
		return fmt.Errorf("session.poll_interval must be positive")
	}
	if c.Session.QueueSize <= 0 {
		return fmt.Errorf("session.queue_size must be positive")
	}
	if !protocol.Role(c.Session.TradeRole).Valid() {
		return fmt.Errorf("session.trade_role: expected MASTER, SLAVE or empty, got %q", c.Session.TradeRole)
	}
	return nil
}

// SerialDefaults converts the link settings for serial.Open*. Device is left
// empty; it is chosen at connect time.
func (c Config) SerialDefaults() serial.Config {
	return serial.Config{
		BaudRate:    c.Serial.BaudRate,
		Delimiter:   c.Serial.Delimiter,
		ReadTimeout: c.Serial.ReadTimeout,
	}
}
