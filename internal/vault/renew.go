package vault

import (
	"context"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// Retry delays for the renewal loop.
const (
	retryAfterError = 30 * time.Second
	retryAfterStop  = 15 * time.Second
	nonRenewable    = time.Hour
)

// keepTokenAlive renews the client token until ctx ends.  A token that
// cannot be renewed is re-checked hourly; it may be replaced out of band.
func (c *Client) keepTokenAlive(ctx context.Context) {
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		switch {
		case err != nil:
			c.logf("vault: token renew failed: %v", err)
			sleep(ctx, retryAfterError)
		case sec == nil || sec.Auth == nil || !sec.Auth.Renewable:
			c.logf("vault: token is not renewable, checking again in %s", nonRenewable)
			sleep(ctx, nonRenewable)
		default:
			c.watch(ctx, sec)
			sleep(ctx, retryAfterStop)
		}
	}
}

// watch runs one lifetime watcher until it stops or ctx ends.
func (c *Client) watch(ctx context.Context, sec *vault.Secret) {
	w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
	if err != nil {
		c.logf("vault: lifetime watcher: %v", err)
		return
	}
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				c.logf("vault: token renewal stopped: %v", err)
			}
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.logf("vault: token renewed, ttl=%ds", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
