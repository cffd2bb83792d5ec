package resend

// Config holds Resend email provider configuration.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY" yaml:"api_key"`
	SenderEmail string `env:"RESEND_FROM_EMAIL" yaml:"sender_email"`
	SenderName  string `env:"RESEND_FROM_NAME" yaml:"sender_name"`
}

// HasCredentials reports whether the API key is configured.
func (c Config) HasCredentials() bool {
	return c.APIKey != ""
}
