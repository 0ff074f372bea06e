package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	BackendIPFS   = "ipfs"
	BackendMemory = "memory"
)

// ServerConfig is everything ipfsdavd needs to start.
type ServerConfig struct {
	// IPFSAPI is the base URL of the node's RPC API.
	IPFSAPI string `validate:"required,url"`

	Backend string `validate:"oneof=ipfs memory"`

	// Listen is the address the WebDAV server binds to.
	Listen string `validate:"required"`

	// Prefix is the URL path the WebDAV tree is served under.
	Prefix string `validate:"omitempty,startswith=/"`

	// AdminListen is the address of the admin API. Empty disables it.
	AdminListen string

	LogLevel  string `validate:"oneof=debug info warn error fatal"`
	LogOutput string `validate:"required"`

	// StrictErrors makes failed backend calls fail the WebDAV request
	// instead of being logged and ignored.
	StrictErrors bool

	RequestTimeout time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// LoadServerConfig reads a ServerConfig from c, filling in defaults, and
// validates it.
func LoadServerConfig(c Configer) (*ServerConfig, error) {
	cfg := &ServerConfig{
		IPFSAPI:        c.GetKeyWithDefault("IPFS_API", "http://127.0.0.1:5001"),
		Backend:        c.GetKeyWithDefault("BACKEND", BackendIPFS),
		Listen:         c.GetKeyWithDefault("LISTEN", ":4918"),
		Prefix:         c.GetKey("PREFIX"),
		AdminListen:    c.GetKeyWithDefault("ADMIN_LISTEN", "localhost:4919"),
		LogLevel:       c.GetKeyWithDefault("LOG_LEVEL", "info"),
		LogOutput:      c.GetKeyWithDefault("LOG_OUTPUT", "stdout"),
		StrictErrors:   c.GetBoolKeyWithDefault("STRICT_ERRORS", false),
		RequestTimeout: time.Duration(c.GetIntKeyWithDefault("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	if cfg.AdminListen == "off" {
		cfg.AdminListen = ""
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, formatValidationError(err)
	}

	return cfg, nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return errors.Errorf("invalid configuration: %s fails '%s' (value: %v)", e.Field(), e.Tag(), e.Value())
	}

	return errors.Wrap(err, "invalid configuration")
}
