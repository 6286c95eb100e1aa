package telegram

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// secretTokenPattern is the character set Telegram accepts for secret_token.
var secretTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// FailurePolicy decides what happens when a media attachment cannot be
// resolved during translation.
type FailurePolicy string

// Attachment failure policies.
const (
	// FailurePolicyFail aborts translation with an *AttachmentError.
	FailurePolicyFail FailurePolicy = "fail"
	// FailurePolicyEmbed stores an unresolved attachment and keeps going.
	FailurePolicyEmbed FailurePolicy = "embed"
)

// Config holds the Telegram adapter configuration. HideInlineKeyboard is a
// pointer so an explicit false survives defaults.
type Config struct {
	Token                       string         `yaml:"token" json:"token"`
	APISecretToken              string         `yaml:"api_secret_token" json:"api_secret_token"`
	TestEnvironment             bool           `yaml:"test_environment" json:"test_environment"`
	HideInlineKeyboard          *bool          `yaml:"hide_inline_keyboard" json:"hide_inline_keyboard"`
	ThrowHTTPExceptions         bool           `yaml:"throw_http_exceptions" json:"throw_http_exceptions"`
	RetryHTTPExceptions         int            `yaml:"retry_http_exceptions" json:"retry_http_exceptions"`
	RetryMultiplier             float64        `yaml:"retry_http_exceptions_multiplier" json:"retry_http_exceptions_multiplier"`
	DefaultAdditionalParameters map[string]any `yaml:"default_additional_parameters" json:"default_additional_parameters"`
	AttachmentFailure           FailurePolicy  `yaml:"attachment_failure" json:"attachment_failure"`
	CacheTime                   *int           `yaml:"cache_time" json:"cache_time"`
	APIURL                      string         `yaml:"api_url" json:"api_url"`
	HTTPTimeout                 time.Duration  `yaml:"http_timeout" json:"http_timeout"`
	WebhookURL                  string         `yaml:"webhook_url" json:"webhook_url"`
	AllowedUpdates              []string       `yaml:"allowed_updates" json:"allowed_updates"`
	AllowUsers                  []string       `yaml:"allow_users" json:"allow_users"`
	AllowGroups                 []string       `yaml:"allow_groups" json:"allow_groups"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.HideInlineKeyboard == nil {
		hide := true
		c.HideInlineKeyboard = &hide
	}
	if c.RetryMultiplier == 0 {
		c.RetryMultiplier = 2
	}
	if c.AttachmentFailure == "" {
		c.AttachmentFailure = FailurePolicyFail
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 60 * time.Second
	}
}

// Validate checks field constraints. It expects ApplyDefaults to have run.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Token,
			validation.Required.Error("token is required"),
			validation.Match(tokenPattern).Error("token format invalid (expected <bot_id>:<hash>)"),
		),
		validation.Field(&c.APISecretToken,
			validation.Length(1, 256),
			validation.Match(secretTokenPattern).Error("may only contain A-Z, a-z, 0-9, _ and -"),
		),
		validation.Field(&c.RetryHTTPExceptions, validation.Min(0), validation.Max(10)),
		validation.Field(&c.RetryMultiplier, validation.Min(0.0)),
		validation.Field(&c.AttachmentFailure, validation.In(FailurePolicyFail, FailurePolicyEmbed)),
		validation.Field(&c.CacheTime, validation.By(nonNegative)),
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.WebhookURL, is.URL),
	)
}

// HidesInlineKeyboard reports whether handled callback queries get their
// inline keyboard removed. Unset means true.
func (c *Config) HidesInlineKeyboard() bool {
	return c.HideInlineKeyboard == nil || *c.HideInlineKeyboard
}

func nonNegative(value any) error {
	p, _ := value.(*int)
	if p != nil && *p < 0 {
		return errors.New("must be no less than 0")
	}
	return nil
}
