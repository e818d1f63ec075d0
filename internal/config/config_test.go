package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

var overridable = []string{"PORT", "HOST", "TOKEN_TTL", "STORAGE_DRIVER", "KAFKA_BROKERS", "CORS_ORIGINS", "SQLITE_PATH"}

func TestLoadFromEnvAppliesDefaults(t *testing.T) {
	unsetEnv(t, overridable...)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 3001, cfg.HTTP.Port)
	assert.Equal(t, ":3001", cfg.HTTP.Address())
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "task-events", cfg.Kafka.EventsTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadFailsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadFromFile(t *testing.T) {
	unsetEnv(t, overridable...)
	t.Setenv("JWT_SECRET", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  port: 8080
auth:
  jwt_secret: from-file
  token_ttl: 1h
  users:
    - id: 7
      username: alice
      password_hash: hash
storage:
  driver: sqlite
  sqlite_path: /tmp/tasks.db
kafka:
  brokers: ["kafka:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret, "env overrides file")
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, User{Id: 7, Username: "alice", PasswordHash: "hash"}, cfg.Auth.Users[0])
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/tasks.db", cfg.Storage.SQLitePath)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Auth:    Auth{JWTSecret: "x", TokenTTL: time.Hour},
			Storage: Storage{Driver: DriverMemory},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Auth.TokenTTL = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidTTL)

	cfg = valid()
	cfg.Storage.Driver = "mongo"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownDriver)

	cfg = valid()
	cfg.Storage.Driver = DriverPostgres
	assert.ErrorIs(t, cfg.Validate(), ErrIncompleteDB)

	cfg.Storage.DB = DB{User: "tasks", DBName: "tasks"}
	assert.NoError(t, cfg.Validate())
}
