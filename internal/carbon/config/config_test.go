package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := ReadConfig()

		assert.Equal(t, ":8080", cfg.ListenAddr)
		assert.Equal(t, ":2112", cfg.MetricsAddr)
		assert.Equal(t, "5M", cfg.BodyLimit)
		assert.False(t, cfg.Minify)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CARBON_LISTEN_ADDR", "127.0.0.1:9000")
		t.Setenv("CARBON_MINIFY", "true")
		t.Setenv("CARBON_SANITIZE_RAW_HTML", "1")
		t.Setenv("CARBON_API_TOKEN", "s3cr3t-token")
		t.Setenv("CARBON_ATTR_RULES", "/etc/carbon/rules.yaml")
		t.Setenv("CARBON_RATE_LIMIT", "30")

		cfg := ReadConfig()

		assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
		assert.True(t, cfg.Minify)
		assert.True(t, cfg.SanitizeRawHTML)
		assert.Equal(t, "s3cr3t-token", cfg.APIToken)
		assert.Equal(t, "/etc/carbon/rules.yaml", cfg.AttrRulesPath)
		assert.Equal(t, 30, cfg.RateLimit)
	})

	t.Run("bad bool is false", func(t *testing.T) {
		t.Setenv("CARBON_MINIFY", "yes please")
		assert.False(t, ReadConfig().Minify)
	})
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "s**t", maskValue("salt"))
	assert.Equal(t, "**", maskValue("ab"))
	assert.True(t, isSecret("APIToken"))
	assert.False(t, isSecret("ListenAddr"))
}
