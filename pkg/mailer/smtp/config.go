package smtp

import "time"

// DefaultTokenURL is Google's OAuth2 token endpoint, used for XOAUTH2 when no other URL is configured.
const DefaultTokenURL = "https://oauth2.googleapis.com/token"

// Config holds SMTP relay configuration.
type Config struct {
	Host      string        `env:"SMTP_HOST" yaml:"host"`
	Port      int           `env:"SMTP_PORT" yaml:"port"`
	Username  string        `env:"SENDER_EMAIL" yaml:"username"`
	Password  string        `env:"APP_PASSWORD" yaml:"password"`
	LocalName string        `env:"SMTP_LOCAL_NAME" yaml:"local_name"`
	Timeout   time.Duration `env:"SMTP_TIMEOUT" yaml:"timeout"`
	// StartTLS upgrades a plain connection instead of dialing implicit TLS.
	// Port 465 always uses implicit TLS.
	StartTLS bool        `env:"SMTP_STARTTLS" yaml:"starttls"`
	OAuth    OAuthConfig `yaml:"oauth"`
}

// OAuthConfig enables XOAUTH2 authentication with a long-lived refresh token.
// When RefreshToken is empty, password authentication is used.
type OAuthConfig struct {
	ClientID     string `env:"SMTP_OAUTH_CLIENT_ID" yaml:"client_id"`
	ClientSecret string `env:"SMTP_OAUTH_CLIENT_SECRET" yaml:"client_secret"`
	RefreshToken string `env:"SMTP_OAUTH_REFRESH_TOKEN" yaml:"refresh_token"`
	TokenURL     string `env:"SMTP_OAUTH_TOKEN_URL" yaml:"token_url"`
}

// Enabled reports whether XOAUTH2 should be used.
func (c OAuthConfig) Enabled() bool {
	return c.RefreshToken != ""
}

// HasCredentials reports whether the relay can be authenticated against.
func (c Config) HasCredentials() bool {
	if c.Username == "" {
		return false
	}
	return c.Password != "" || c.OAuth.Enabled()
}
