// Package authclient signs an operator in with Google and resolves their
// identity. Roster data keys users by auth UID, with email mirrored as the
// assignment identifier.
package authclient

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/jakechorley/team-roster/internal/config"
)

// Identity is the signed-in Google account.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// Client wraps the Google OAuth2 userinfo API
type Client struct {
	oauthCfg *config.OAuthClientConfig

	mu    sync.Mutex
	token *oauth2.Token
}

// NewClient creates an auth client. No network calls happen until SignIn.
func NewClient(oauthCfg *config.OAuthClientConfig) *Client {
	return &Client{oauthCfg: oauthCfg}
}

// SignIn runs the browser authorization flow if no valid token is cached
// and returns the account identity.
func (c *Client) SignIn(ctx context.Context) (*Identity, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	conf, err := oauthConfig(c.oauthCfg)
	if err != nil {
		return nil, err
	}

	httpClient := conf.Client(ctx, token)
	service, err := oauth2api.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	userinfo, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	return &Identity{
		UID:   userinfo.Id,
		Email: userinfo.Email,
		Name:  userinfo.Name,
	}, nil
}

// Token returns the cached OAuth token from a previous sign-in.
func (c *Client) Token() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// ClearToken drops the cached token so the next sign-in reruns the flow.
func (c *Client) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
}

func (c *Client) getToken(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.Valid() {
		return c.token, nil
	}

	cfg, err := oauthConfig(c.oauthCfg)
	if err != nil {
		return nil, err
	}

	token, err := tokenWithFlow(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c.token = token
	return token, nil
}
