package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, int64(10*1024*1024), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Assignment.EnforceCapacity)
	assert.False(t, cfg.Assignment.LockCompleted)
	assert.True(t, cfg.Reconciler.Enabled)
	assert.Equal(t, "0 */30 * * * *", cfg.Reconciler.Schedule)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	v.Set("CACHE_TTL", "not-a-duration")
	v.Set("STORAGE_DRIVER", "S3")
	v.Set("APP_URL", "https://portal.test/")
	v.Set("LOCK_COMPLETED_INTERNSHIPS", true)

	cfg := fromViper(v)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, StorageDriverS3, cfg.Storage.Driver)
	assert.Equal(t, "https://portal.test", cfg.Mail.AppURL)
	assert.True(t, cfg.Assignment.LockCompleted)
}
