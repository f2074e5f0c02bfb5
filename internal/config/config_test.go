package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("SUPABASE_PROFILE_BUCKET", "")
	t.Setenv("STATE_SECRET", "")
	t.Setenv("CLERK_ISSUER", "")
	t.Setenv("TRUSTED_PROXIES", "")

	conf := ReadConfig()

	assert.Empty(t, conf.JWT_SECRET, "no built-in signing secret")
	assert.Empty(t, conf.STATE_SECRET)
	assert.Empty(t, conf.TRUSTED_PROXIES)
	assert.Equal(t, 30, conf.RATE_LIMIT_PER_MINUTE)
	assert.Equal(t, "Profilephoto", conf.SUPABASE_PROFILE_BUCKET)
	assert.Equal(t, "Resume", conf.SUPABASE_RESUME_BUCKET)
	assert.False(t, conf.ProviderAuthEnabled())
}

func TestReadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("CLERK_ISSUER", "https://clerk.example.com")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, ,10.0.0.2")

	conf := ReadConfig()

	assert.Equal(t, "s3cret", conf.JWT_SECRET)
	assert.Equal(t, "s3cret", conf.STATE_SECRET)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, conf.TRUSTED_PROXIES)
	assert.Equal(t, 5, conf.RATE_LIMIT_PER_MINUTE)
	assert.True(t, conf.ProviderAuthEnabled())
}

func TestDSN(t *testing.T) {
	conf := &Config{DB_USERNAME: "postgres", DB_PASSWORD: "pw", DB_HOST: "db", DB_PORT: "5432", DB_NAME: "FreshersJob"}
	assert.Equal(t, "postgresql://postgres:pw@db:5432/FreshersJob", conf.DSN())

	conf.DISABLE_TLS = "true"
	assert.Equal(t, "postgresql://postgres:pw@db:5432/FreshersJob?sslmode=disable", conf.DSN())
}
