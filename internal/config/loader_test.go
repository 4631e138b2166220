package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoot(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "conf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644))
	return root
}

const minimal = `
database:
  dsn: "sitekit@tcp(127.0.0.1:3306)/sitekit"
`

func TestLoadAppliesDefaults(t *testing.T) {
	root := writeRoot(t, minimal)

	cfg, err := LoadFrom(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, DefaultBaseDomain, cfg.Platform.BaseDomain)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(root, "data", "assets"), cfg.Storage.LocalDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15, cfg.Database.MaxOpenConns)
	assert.Equal(t, root, cfg.Paths.Root)
}

func TestLoadReadsYAML(t *testing.T) {
	root := writeRoot(t, `
http:
  listen_addr: "127.0.0.1:9000"
  force_https: true
  read_timeout: 3s
platform:
  base_domain: " Sites.Example.COM "
database:
  dsn: "u@tcp(db:3306)/sk"
storage:
  driver: s3
  public_base_url: "https://cdn.example.com"
  s3:
    bucket: logos
    endpoint: "https://acct.r2.cloudflarestorage.com"
    force_path_style: true
log:
  level: debug
`)
	cfg, err := LoadFrom(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.ListenAddr)
	assert.True(t, cfg.HTTP.ForceHTTPS)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "sites.example.com", cfg.Platform.BaseDomain)
	assert.Equal(t, "logos", cfg.Storage.S3.Bucket)
	assert.True(t, cfg.Storage.S3.ForcePathStyle)
	assert.Empty(t, cfg.Storage.LocalDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesYAML(t *testing.T) {
	root := writeRoot(t, minimal)
	t.Setenv("SITEKIT_HTTP__LISTEN_ADDR", ":7070")
	t.Setenv("SITEKIT_PLATFORM__BASE_DOMAIN", "example.net")
	t.Setenv("SITEKIT_HTTP__FORCE_HTTPS", "true")

	cfg, err := LoadFrom(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.ListenAddr)
	assert.Equal(t, "example.net", cfg.Platform.BaseDomain)
	assert.True(t, cfg.HTTP.ForceHTTPS)
}

func TestDotEnvIsLoaded(t *testing.T) {
	root := writeRoot(t, minimal)
	require.NoError(t, os.WriteFile(filepath.Join(root, "conf", ".env"),
		[]byte("SITEKIT_LOG__LEVEL=warn\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SITEKIT_LOG__LEVEL") })

	cfg, err := LoadFrom(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestVaultReferencesAreResolved(t *testing.T) {
	root := writeRoot(t, minimal+`  password: "vault:secret/sitekit/db#password"
`)
	var asked string
	res := func(_ context.Context, ref string) (string, error) {
		asked = ref
		return "s3cr3t", nil
	}

	cfg, err := LoadFrom(context.Background(), root, res)
	require.NoError(t, err)
	assert.Equal(t, "secret/sitekit/db#password", asked)
	assert.Equal(t, "s3cr3t", cfg.Database.Password)

	_, err = LoadFrom(context.Background(), root, nil)
	assert.Error(t, err, "a vault ref without a resolver must fail")

	boom := errors.New("sealed")
	_, err = LoadFrom(context.Background(), root, func(context.Context, string) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestValidationFailures(t *testing.T) {
	cases := map[string]string{
		"missing dsn":       `log: {level: info}`,
		"bad driver":        minimal + "storage: {driver: ftp}\n",
		"s3 without bucket": minimal + "storage: {driver: s3}\n",
		"bad level":         minimal + "log: {level: loud}\n",
		"bad listen addr":   minimal + "http: {listen_addr: nope}\n",
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), writeRoot(t, yaml), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadCachesConfig(t *testing.T) {
	root := writeRoot(t, minimal)
	t.Setenv("SITEKIT_ROOT", root)

	cfg, err := Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Same(t, cfg, Get())
	require.NoError(t, Reload(context.Background()))
	assert.NotSame(t, cfg, Get())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "http.listen_addr", envKey("SITEKIT_HTTP__LISTEN_ADDR"))
	assert.Equal(t, "storage.s3.bucket", envKey("SITEKIT_STORAGE__S3__BUCKET"))
}
