package vault

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultTTL is how long Resolve caches a secret.
	DefaultTTL = 5 * time.Minute

	// maxCached bounds the secret cache.  Config holds a handful of refs.
	maxCached = 64
)

type entry struct {
	val string
	exp time.Time
}

// GetKV fetches one key of a KV-v2 secret.  With ttl > 0 the value is
// cached for that long; ttl <= 0 always reads through.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("vault: secret path and key must be non-empty")
	}
	ref := secretPath + "#" + key

	if ttl > 0 {
		if e, ok := c.secrets.Get(ref); ok && time.Now().Before(e.exp) {
			return e.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", secretPath, err)
	}
	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("vault: %s has no key %q", secretPath, key)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: %s is not a string", ref)
	}

	if ttl > 0 {
		c.secrets.Add(ref, entry{val: val, exp: time.Now().Add(ttl)})
	}
	return val, nil
}
