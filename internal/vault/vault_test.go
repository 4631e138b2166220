package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	vault "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	p, k, err := ParseRef("secret/sitekit/db#password")
	require.NoError(t, err)
	assert.Equal(t, "secret/sitekit/db", p)
	assert.Equal(t, "password", k)

	for _, bad := range []string{"secret/db", "secret/db#", "secret#pw", "#pw", ""} {
		_, _, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitMount(t *testing.T) {
	m, r := splitMount("secret/a/b")
	assert.Equal(t, "secret", m)
	assert.Equal(t, "a/b", r)
}

func TestResolveReadsKVv2AndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/sitekit/db" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"password":"s3cr3t"},` +
			`"metadata":{"version":1,"created_time":"2025-01-01T00:00:00Z","deletion_time":"","destroyed":false}}}`))
	}))
	defer srv.Close()

	cfg := vault.DefaultConfig()
	cfg.Address = srv.URL
	api, err := vault.NewClient(cfg)
	require.NoError(t, err)
	api.SetToken("test")

	c := newClient(api, nil)
	for i := 0; i < 2; i++ {
		got, err := c.Resolve(context.Background(), "secret/sitekit/db#password")
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", got)
	}
	assert.Equal(t, int32(1), hits.Load(), "second read should come from cache")

	_, err = c.Resolve(context.Background(), "secret/sitekit/db#missing")
	assert.Error(t, err)
}

func TestGetKVWithoutTTLReadsThrough(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"token":"abc","n":7},` +
			`"metadata":{"version":2,"created_time":"2025-01-01T00:00:00Z","deletion_time":"","destroyed":false}}}`))
	}))
	defer srv.Close()

	cfg := vault.DefaultConfig()
	cfg.Address = srv.URL
	api, err := vault.NewClient(cfg)
	require.NoError(t, err)
	api.SetToken("test")

	c := newClient(api, nil)
	for i := 0; i < 2; i++ {
		got, err := c.GetKV(context.Background(), "kv/app", "token", 0)
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	}
	assert.Equal(t, int32(2), hits.Load())

	_, err = c.GetKV(context.Background(), "kv/app", "n", 0)
	assert.ErrorContains(t, err, "not a string")

	_, err = c.GetKV(context.Background(), "", "token", 0)
	assert.Error(t, err)
}
