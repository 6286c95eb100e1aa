package gateway

import (
	"net"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultMaxBodyBytes caps webhook bodies. Telegram updates are small; the
// cap only protects the process from abuse.
const DefaultMaxBodyBytes = 1 << 20

// Config holds HTTP gateway configuration.
type Config struct {
	Bind            string        `yaml:"bind" json:"bind"`
	Auth            AuthConfig    `yaml:"auth" json:"auth"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// ApplyDefaults fills zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8080"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Validate checks the bind address and auth pairing.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Bind, validation.Required, validation.By(tcpAddr)),
		validation.Field(&c.Auth),
	)
}

func tcpAddr(v any) error {
	s, _ := v.(string)
	if _, err := net.ResolveTCPAddr("tcp", s); err != nil {
		return validation.NewError("validation_tcp_addr", "must be a valid host:port")
	}
	return nil
}

// AuthConfig configures authentication for admin endpoints.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token" json:"bearer_token"`
	BasicUser   string `yaml:"basic_user" json:"basic_user"`
	BasicPass   string `yaml:"basic_pass" json:"basic_pass"`
}

// IsConfigured returns true if any auth method is configured.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != "" || (a.BasicUser != "" && a.BasicPass != "")
}

// Validate rejects a basic user without a password and vice versa.
func (a AuthConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BasicUser, validation.When(a.BasicPass != "", validation.Required)),
		validation.Field(&a.BasicPass, validation.When(a.BasicUser != "", validation.Required)),
	)
}
