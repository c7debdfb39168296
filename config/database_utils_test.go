package config

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurePostgresPool(t *testing.T) {
	tests := []struct {
		name      string
		config    *DatabaseConfig
		wantTLS   bool
		wantMax   int32
		wantMin   int32
		wantLife  time.Duration
		wantDB    string
		wantUser  string
	}{
		{
			name: "supabase host forces TLS",
			config: &DatabaseConfig{
				Host:         "db.abcdefgh.supabase.co",
				Port:         5432,
				User:         "postgres",
				Password:     "p@ss word",
				Name:         "postgres",
				SSLMode:      "require",
				MaxOpenConns: 20,
				MaxIdleConns: 5,
				ConnMaxLife:  "30m",
			},
			wantTLS:  true,
			wantMax:  20,
			wantMin:  5,
			wantLife: 30 * time.Minute,
			wantDB:   "postgres",
			wantUser: "postgres",
		},
		{
			name: "local database with bad lifetime",
			config: &DatabaseConfig{
				Host:         "localhost",
				Port:         5432,
				User:         "journals",
				Password:     "secret",
				Name:         "journals_dev",
				SSLMode:      "disable",
				MaxOpenConns: 2,
				MaxIdleConns: 10,
				ConnMaxLife:  "forever",
			},
			wantTLS:  false,
			wantMax:  2,
			wantMin:  2,
			wantLife: time.Hour,
			wantDB:   "journals_dev",
			wantUser: "journals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ConfigurePostgresPool(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, cfg.ConnConfig.User)
			assert.Equal(t, tt.wantDB, cfg.ConnConfig.Database)
			assert.Equal(t, tt.config.Password, cfg.ConnConfig.Password)
			assert.Equal(t, tt.wantMax, cfg.MaxConns)
			assert.Equal(t, tt.wantMin, cfg.MinConns)
			assert.Equal(t, tt.wantLife, cfg.MaxConnLifetime)
			if tt.wantTLS {
				assert.NotNil(t, cfg.ConnConfig.TLSConfig)
			}
		})
	}
}

func TestConfigureRedisOptions(t *testing.T) {
	opts := ConfigureRedisOptions(&RedisConfig{Address: "localhost:6379", DB: 1, PoolSize: 7, MinIdleConns: 2})
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Nil(t, opts.TLSConfig)

	opts = ConfigureRedisOptions(&RedisConfig{Address: "eu1-fancy.upstash.io:6379"})
	assert.NotNil(t, opts.TLSConfig)

	opts = ConfigureRedisOptions(&RedisConfig{Address: "redis.internal:6380", UseTLS: true})
	assert.NotNil(t, opts.TLSConfig)
}

func TestTestRedisConnection(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")

	require.NoError(t, TestRedisConnection(client))
	assert.NoError(t, mock.ExpectationsWereMet())
}
