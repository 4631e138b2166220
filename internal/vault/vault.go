// internal/vault/vault.go
//
// Secret references for sitekit config.
//
// Context
// -------
// Config values of the form `vault:<mount>/<path>#<key>` are resolved here
// before the config tree is unmarshalled.  Only KV-v2 mounts are supported.
// A deployment with no `vault:` values never dials Vault: cmd/web and
// cmd/sitectl hand config.Load the resolver returned by Lazy.
//
// Workflow
// --------
//  1. res := vault.Lazy(ctx, logf)                  // at boot, no I/O.
//  2. pw, err := res(ctx, "secret/sitekit/db#pw")   // first call dials.
//  3. Token renewal runs in the background until ctx ends (renew.go).
//
// Notes
// -----
// • VAULT_ADDR, VAULT_TOKEN, and the other standard VAULT_* variables are
//   read by the SDK.
// • Values are cached per path#key for DefaultTTL (kv.go).
package vault

import (
	"context"
	"fmt"
	"strings"
	"sync"

	vault "github.com/hashicorp/vault/api"

	"github.com/yanizio/sitekit/internal/cache"
)

// Logf is the printf-style sink for renewal and cache events.
type Logf func(format string, args ...any)

// Client reads KV-v2 secrets.  Safe for concurrent use; the zero value is
// not.
type Client struct {
	api     *vault.Client
	logf    Logf
	secrets *cache.LRU[string, entry]
}

// New builds a Client from the VAULT_* environment and starts token
// renewal bound to ctx.
func New(ctx context.Context, logf Logf) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault: read environment: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault: new client: %w", err)
	}

	c := newClient(api, logf)
	go c.keepTokenAlive(ctx)
	return c, nil
}

func newClient(api *vault.Client, logf Logf) *Client {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Client{
		api:     api,
		logf:    logf,
		secrets: cache.New[string, entry](maxCached),
	}
}

// Resolve reads a "mount/path#key" reference.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, err := ParseRef(ref)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, path, key, DefaultTTL)
}

// ParseRef splits "mount/path#key".  The path needs a mount and at least
// one segment below it.
func ParseRef(ref string) (path, key string, err error) {
	path, key, ok := strings.Cut(strings.TrimSpace(ref), "#")
	if !ok || key == "" {
		return "", "", fmt.Errorf("vault: ref %q has no #key", ref)
	}
	if mount, rel := splitMount(path); mount == "" || rel == "" {
		return "", "", fmt.Errorf("vault: ref %q needs mount/path", ref)
	}
	return path, key, nil
}

// Lazy returns a resolver that builds the Client on first use.  A failed
// build is remembered; later calls return the same error.
func Lazy(ctx context.Context, logf Logf) func(context.Context, string) (string, error) {
	var (
		once sync.Once
		cli  *Client
		err  error
	)
	return func(rctx context.Context, ref string) (string, error) {
		once.Do(func() { cli, err = New(ctx, logf) })
		if err != nil {
			return "", err
		}
		return cli.Resolve(rctx, ref)
	}
}

// splitMount cuts the first path segment off as the KV mount.
func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}
