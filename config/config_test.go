package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("UPLOAD_CHUNK_SIZE", "")
	cfg := Load()
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 1<<20, cfg.UploadChunkSize)
	assert.Equal(t, 7, cfg.DeliveryDays)
}

func TestSessionTTLFollowsRefreshTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "")
	t.Setenv("JWT_REFRESH_TTL", "")
	cfg := Load()
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, cfg.RefreshTTL, cfg.SessionTTL)

	t.Setenv("JWT_REFRESH_TTL", "720h")
	assert.Equal(t, 720*time.Hour, Load().SessionTTL)
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("DELIVERY_DAYS", "three")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	cfg := Load()
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 7, cfg.DeliveryDays)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokerList())
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "shop", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/shop?sslmode=disable", c.PostgresDSN())
}
