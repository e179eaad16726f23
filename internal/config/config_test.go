package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "filedeck.db", cfg.DatabasePath)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.NotEmpty(t, cfg.TokenFilePath)
	assert.NotEmpty(t, cfg.SecretKey)
	assert.Equal(t, 24*time.Hour, cfg.TokenValidityDuration)
	assert.NotEmpty(t, cfg.S3Bucket)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-m", "remote", "-f", "other.db"}

	cfg := LoadConfig()

	assert.Equal(t, BackendRemote, cfg.Backend)
	assert.Equal(t, "other.db", cfg.DatabasePath)
	// Defaults survive for everything else.
	assert.Equal(t, 24*time.Hour, cfg.TokenValidityDuration)
}
