package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"resume-builder/internal/shared/util"
)

const configFile = ".resumectl.yaml"

// Config is the CLI configuration, merged from flags, RESUMECTL_ env vars
// and .resumectl.yaml, in that order of precedence.
type Config struct {
	ServerURL string        `mapstructure:"server"`
	Token     string        `mapstructure:"token"`
	GuestID   string        `mapstructure:"guest_id"`
	StatePath string        `mapstructure:"state"`
	Session   string        `mapstructure:"session"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetDefault("server", "http://localhost:8080/api/v1")
	v.SetDefault("timeout", 15*time.Second)
	v.SetEnvPrefix("RESUMECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range map[string]string{
		"server":   "server",
		"token":    "token",
		"guest_id": "guest-id",
		"state":    "state",
		"session":  "session",
		"timeout":  "timeout",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	// A missing config file is fine.
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", configFile, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	if cfg.Token == "" && cfg.GuestID == "" {
		return Config{}, fmt.Errorf("set --token or --guest-id (or RESUMECTL_TOKEN / RESUMECTL_GUEST_ID)")
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	c.Token = strings.TrimSpace(c.Token)
	c.GuestID = strings.TrimSpace(c.GuestID)
	c.Session = strings.TrimSpace(c.Session)
	if c.Session == "" {
		c.Session = util.SessionKey(c.identity())
	}
	if c.StatePath == "" {
		c.StatePath = defaultStatePath()
	}
}

func (c Config) identity() string {
	if c.Token != "" {
		return "token:" + c.Token
	}
	return "guest:" + c.GuestID
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "resumectl", "state.db")
}
