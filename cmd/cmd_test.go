package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard-service/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServerPort:         "0",
		StorageDriver:      config.DriverSQLite,
		DatabaseURL:        ":memory:",
		JWTSecret:          "cmd-secret",
		TokenTTL:           time.Minute,
		BcryptCost:         4,
		CORSOrigin:         "*",
		BreakerTimeout:     time.Second,
		BreakerMaxFailures: 3,
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("env-file"))
}

func TestBuildHandlerServesHealth(t *testing.T) {
	cfg := testConfig(t)
	store, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	rec := httptest.NewRecorder()
	buildHandler(cfg, store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWithCacheSkipsUnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	store, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	cfg.RedisAddr = "127.0.0.1:1"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Same(t, store, withCache(ctx, cfg, store))
}

func TestLoadBlackListFromConfig(t *testing.T) {
	cfg := testConfig(t)
	assert.Nil(t, loadBlackList(cfg))

	path := filepath.Join(t.TempDir(), "blacklist.txt")
	require.NoError(t, os.WriteFile(path, []byte("password1\nletmein99\n"), 0o600))
	cfg.PasswordBlacklistFile = path
	assert.Len(t, loadBlackList(cfg), 2)

	cfg.PasswordBlacklistFile = path + ".missing"
	assert.Nil(t, loadBlackList(cfg))
}

func TestServeStopsOnContextCancel(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
