package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sourcemart/storefront-api/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"APP_ENV":    "",
		"PORT":       "",
		"JWT_SECRET": "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 500*time.Millisecond, cfg.CartDebounceWindow)
	require.Equal(t, 5*time.Second, cfg.ImageProbeTimeout)
	require.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"APP_ENV":    "production",
		"JWT_SECRET": "",
	})
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"PORT":                 "9090",
		"CART_DEBOUNCE_WINDOW": "200ms",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"JWT_SECRET":           "s3cret",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 200*time.Millisecond, cfg.CartDebounceWindow)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "s3cret", cfg.JWTSecret)
}
