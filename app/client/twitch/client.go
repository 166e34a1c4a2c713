package twitch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quizbot/app/config"

	"github.com/nicklaw5/helix/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const refreshMargin = 5 * time.Minute

// Client keeps a fresh user access token of the bot account.
type Client struct {
	cfg       *config.Config
	helix     *helix.Client
	mutex     sync.RWMutex
	token     string
	refresh   string
	expiresAt time.Time
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	helixClient, err := helix.NewClient(&helix.Options{
		ClientID:     cfg.Twitch.ClientID,
		ClientSecret: cfg.Twitch.ClientSecret,
	})
	if err != nil {
		return nil, oops.In("twitch").Wrapf(err, "failed to create helix client")
	}

	client := &Client{
		cfg:     cfg,
		helix:   helixClient,
		refresh: cfg.Twitch.RefreshToken,
	}

	if err = client.refreshToken(); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *Client) AccessToken() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.token
}

func (c *Client) refreshToken() error {
	c.mutex.RLock()
	refresh := c.refresh
	c.mutex.RUnlock()

	resp, err := c.helix.RefreshUserAccessToken(refresh)
	if err != nil {
		return oops.In("twitch").Wrapf(err, "failed to refresh token")
	}
	if resp.ErrorMessage != "" {
		return oops.In("twitch").With("status", resp.StatusCode).Errorf("failed to refresh token: %s", resp.ErrorMessage)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.token = resp.Data.AccessToken
	if resp.Data.RefreshToken != "" {
		c.refresh = resp.Data.RefreshToken
	}
	c.expiresAt = time.Now().Add(time.Duration(resp.Data.ExpiresIn) * time.Second)
	c.helix.SetUserAccessToken(c.token)

	slog.Debug("Twitch token refreshed", "expires_at", c.expiresAt)

	return nil
}

func (c *Client) needsRefresh() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return time.Until(c.expiresAt) < refreshMargin
}

func (c *Client) RunRefreshLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.needsRefresh() {
				continue
			}
			if err := c.refreshToken(); err != nil {
				slog.Error("Twitch token refresh failed", "error", err)
			}
		}
	}
}
