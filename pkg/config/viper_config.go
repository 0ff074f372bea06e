package config

import (
	"strings"

	"github.com/apex/log"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ViperConfig reads keys from a YAML file, IPFSDAV_* environment variables
// and bound command line flags. In the file keys are lower case, so IPFS_API
// is written ipfs_api.
type ViperConfig struct {
	v    *viper.Viper
	path string
}

func NewViperConfig(path string) *ViperConfig {
	v := viper.New()
	v.SetEnvPrefix(strings.TrimSuffix(EnvPrefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &ViperConfig{v: v, path: path}
}

// BindFlags lets command line flags override every other source. A flag
// named admin-listen binds to ADMIN_LISTEN.
func (c *ViperConfig) BindFlags(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Name == "config" {
			return
		}
		err = c.v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})

	return errors.Wrap(err, "unable to bind flags")
}

func (c *ViperConfig) LoadFromPath(path string) error {
	c.path = path
	return c.Load()
}

// Load reads the config file. A missing file is only an error when a path
// was given explicitly.
func (c *ViperConfig) Load() error {
	if c.path == "" {
		c.v.SetConfigName("ipfsdav")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			c.v.AddConfigPath(home + "/.config/ipfsdav")
		}
	} else {
		path, err := homedir.Expand(c.path)
		if err != nil {
			return errors.Wrapf(err, "invalid config path %s", c.path)
		}
		c.v.SetConfigFile(path)
	}

	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && c.path == "" {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}

	return nil
}

func (c *ViperConfig) GetKey(key string) string {
	return c.v.GetString(strings.ToLower(key))
}

func (c *ViperConfig) MustGetKey(key string) string {
	val := c.GetKey(key)
	if val == "" {
		log.Fatalf("No such required config key: '%s'", key)
	}

	return val
}

func (c *ViperConfig) GetKeyWithDefault(key, defaultValue string) string {
	val := c.GetKey(key)
	if val == "" {
		return defaultValue
	}

	return val
}

func (c *ViperConfig) GetIntKey(key string) int {
	return c.GetIntKeyWithDefault(key, 0)
}

func (c *ViperConfig) MustGetIntKey(key string) int {
	if !c.v.IsSet(strings.ToLower(key)) {
		log.Fatalf("Required config key doesn't exist: '%s'", key)
	}

	return c.v.GetInt(strings.ToLower(key))
}

func (c *ViperConfig) GetIntKeyWithDefault(key string, defaultValue int) int {
	return parseIntWithDefault(c.GetKey(key), defaultValue)
}

func (c *ViperConfig) GetBoolKeyWithDefault(key string, defaultValue bool) bool {
	return parseBoolWithDefault(c.GetKey(key), defaultValue)
}
