package smtp

import (
	"context"
	"errors"
	"fmt"
	netsmtp "net/smtp"

	"golang.org/x/oauth2"
)

// xoauth2Auth implements the XOAUTH2 SASL mechanism used by Gmail and Outlook.
type xoauth2Auth struct {
	tokens   oauth2.TokenSource
	username string
	host     string
}

func newXOAuth2(ctx context.Context, cfg Config) netsmtp.Auth {
	tokenURL := cfg.OAuth.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	oc := &oauth2.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}

	return &xoauth2Auth{
		tokens:   oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.OAuth.RefreshToken}),
		username: cfg.Username,
		host:     cfg.Host,
	}
}

func (a *xoauth2Auth) Start(server *netsmtp.ServerInfo) (string, []byte, error) {
	if !server.TLS && !isLocalhost(server.Name) {
		return "", nil, errors.New("smtp: xoauth2 requires an encrypted connection")
	}
	if server.Name != a.host {
		return "", nil, errors.New("smtp: wrong host name")
	}

	tok, err := a.tokens.Token()
	if err != nil {
		return "", nil, fmt.Errorf("smtp: refresh oauth2 token: %w", err)
	}

	resp := "user=" + a.username + "\x01auth=Bearer " + tok.AccessToken + "\x01\x01"
	return "XOAUTH2", []byte(resp), nil
}

// Next answers the server's error challenge with an empty response,
// after which the server reports the authentication failure.
func (a *xoauth2Auth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		return []byte{}, nil
	}
	return nil, nil
}

func isLocalhost(name string) bool {
	return name == "localhost" || name == "127.0.0.1" || name == "::1"
}
