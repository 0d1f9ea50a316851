package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vaxledger/pkg/domain"
)

func TestJWTSigningKey(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")
	assert.Equal(t, "dev-secret-key-change-in-production", JWTSigningKey(),
		"server and token CLI share the development default")

	t.Setenv("JWT_SIGNING_KEY", "deployment-secret")
	assert.Equal(t, "deployment-secret", JWTSigningKey())
}

func TestFromEnvRequiresAuthority(t *testing.T) {
	t.Setenv("VAXLEDGER_AUTHORITY_ID", "")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvDefaults(t *testing.T) {
	authority := id.NewIdentity()
	t.Setenv("VAXLEDGER_AUTHORITY_ID", authority.String())
	t.Setenv("VAXLEDGER_ADDR", "")
	t.Setenv("JWT_SIGNING_KEY", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, authority, cfg.AuthorityID)
	assert.Equal(t, JWTSigningKey(), cfg.JWTSigningKey)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "vaxledger.events", cfg.Kafka.Topic)
}
