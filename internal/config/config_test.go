package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, names := range legacyEnv {
		for _, name := range names {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	for _, name := range []string{"S3_REGION", "S3_BUCKET_NAME", "STORE_BACKEND", "STORE_KEY", "FILE_RETENTION", "JWT_EXPIRATION", "SERVER_ADDRESS"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "xdg"))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, BackendS3, cfg.Store.Backend)
	assert.Equal(t, "metadata/videosplus-data.json", cfg.Store.Key)
	assert.Equal(t, 5, cfg.File.Retention)
	assert.Equal(t, filepath.Join(dir, "xdg", "videosplus"), cfg.File.DataDir)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, time.Hour, cfg.S3.PresignExpiry)
	assert.Equal(t, 30*time.Second, cfg.Lock.TTL)
	assert.Empty(t, cfg.Bootstrap.AdminEmail)
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := []byte(`
store:
  backend: file
  optimistic_concurrency: true
file:
  data_dir: /srv/videosplus
  retention: 7
s3:
  region: eu-central-1
  bucket_name: from-file
jwt:
  expiration: 90m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("S3_BUCKET_NAME", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.True(t, cfg.Store.OptimisticConcurrency)
	assert.Equal(t, "/srv/videosplus", cfg.File.DataDir)
	assert.Equal(t, 7, cfg.File.Retention)
	assert.Equal(t, "eu-central-1", cfg.S3.Region)
	assert.Equal(t, "from-env", cfg.S3.BucketName)
	assert.Equal(t, 90*time.Minute, cfg.JWT.Expiration)
}

func TestLoadConfigLegacyWasabiEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("VITE_WASABI_REGION", "us-east-1")
	t.Setenv("VITE_WASABI_ENDPOINT", "https://s3.wasabisys.com")
	t.Setenv("WASABI_ACCESS_KEY", "AK")
	t.Setenv("VITE_WASABI_SECRET_KEY", "SK")
	t.Setenv("VITE_WASABI_BUCKET", "videos")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, "https://s3.wasabisys.com", cfg.S3.Endpoint)
	assert.Equal(t, "AK", cfg.S3.AccessKeyID)
	assert.Equal(t, "SK", cfg.S3.SecretAccessKey)
	assert.Equal(t, "videos", cfg.S3.BucketName)
	assert.Empty(t, cfg.S3.Missing())
}

func TestLoadConfigDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORE_BACKEND=memory\nSTORE_KEY=custom.json\n"), 0o600))
	// godotenv sets variables on the process; make sure they are cleaned up.
	t.Setenv("STORE_BACKEND", "")
	os.Unsetenv("STORE_BACKEND")
	t.Setenv("STORE_KEY", "")
	os.Unsetenv("STORE_KEY")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "custom.json", cfg.Store.Key)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "postgres")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "unknown store.backend")
}

func TestS3ConfigMissing(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"region", "endpoint", "access_key_id", "secret_access_key", "bucket_name"},
		S3Config{}.Missing())
	assert.Equal(t, []string{"bucket_name"}, S3Config{
		Region: "r", Endpoint: "e", AccessKeyID: "a", SecretAccessKey: "s",
	}.Missing())
}
