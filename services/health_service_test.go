package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHealthService(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	service := NewHealthService(mockDB, nil, "1.0.0")

	assert.Equal(t, "1.0.0", service.version)
	assert.NotNil(t, service.log)
	assert.True(t, time.Since(service.startTime) < time.Second)
	assert.Nil(t, service.poolUsage)
}

func TestHealthService_CheckHealth(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(pgxmock.PgxPoolIface, redismock.ClientMock)
		expectedStatus types.HealthStatus
		expectedComps  map[string]types.HealthStatus
	}{
		{
			name: "All services healthy",
			setupMocks: func(db pgxmock.PgxPoolIface, rdb redismock.ClientMock) {
				db.ExpectPing()
				rdb.ExpectPing().SetVal("PONG")
			},
			expectedStatus: types.HealthStatusUp,
			expectedComps: map[string]types.HealthStatus{
				"database": types.HealthStatusUp,
				"redis":    types.HealthStatusUp,
			},
		},
		{
			name: "Database down, Redis up",
			setupMocks: func(db pgxmock.PgxPoolIface, rdb redismock.ClientMock) {
				for i := 0; i < dbPingAttempts; i++ {
					db.ExpectPing().WillReturnError(errors.New("connection refused"))
				}
				rdb.ExpectPing().SetVal("PONG")
			},
			expectedStatus: types.HealthStatusDown,
			expectedComps: map[string]types.HealthStatus{
				"database": types.HealthStatusDown,
				"redis":    types.HealthStatusUp,
			},
		},
		{
			name: "Database up after retry, Redis down",
			setupMocks: func(db pgxmock.PgxPoolIface, rdb redismock.ClientMock) {
				db.ExpectPing().WillReturnError(errors.New("temporary error"))
				db.ExpectPing()
				rdb.ExpectPing().SetErr(errors.New("redis connection failed"))
			},
			expectedStatus: types.HealthStatusDown,
			expectedComps: map[string]types.HealthStatus{
				"database": types.HealthStatusUp,
				"redis":    types.HealthStatusDown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mockDB.Close()
			mockRedisClient, mockRedis := redismock.NewClientMock()

			tt.setupMocks(mockDB, mockRedis)

			service := NewHealthService(mockDB, mockRedisClient, "2.0.0")
			service.retryDelay = time.Millisecond

			result := service.CheckHealth(context.Background())

			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, "2.0.0", result.Version)
			assert.NotEmpty(t, result.Timestamp)
			assert.NotEmpty(t, result.Uptime)
			for comp, expected := range tt.expectedComps {
				assert.Equal(t, expected, result.Components[comp].Status, comp)
			}
			require.NoError(t, mockDB.ExpectationsWereMet())
			require.NoError(t, mockRedis.ExpectationsWereMet())
		})
	}
}

func TestHealthService_checkDatabase_PoolUsage(t *testing.T) {
	tests := []struct {
		name           string
		startTime      time.Time
		acquired       int32
		expectedStatus types.HealthStatus
	}{
		{"mature instance under threshold", time.Now().Add(-10 * time.Minute), 5, types.HealthStatusUp},
		{"mature instance near capacity", time.Now().Add(-10 * time.Minute), 9, types.HealthStatusDegraded},
		{"new instance tolerates high usage", time.Now(), 9, types.HealthStatusUp},
		{"new instance saturated", time.Now(), 10, types.HealthStatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mockDB.Close()
			mockDB.ExpectPing()

			service := &HealthService{
				dbPool:    mockDB,
				log:       logger.GetLogger(),
				startTime: tt.startTime,
			}
			service.SetPoolUsageGetter(func() (int32, int32) { return tt.acquired, 10 })

			result := service.checkDatabase(context.Background())
			assert.Equal(t, tt.expectedStatus, result.Status)
			require.NoError(t, mockDB.ExpectationsWereMet())
		})
	}
}

func TestHealthService_checkRedis(t *testing.T) {
	mockRedis, redisMock := redismock.NewClientMock()
	redisMock.ExpectPing().SetErr(context.DeadlineExceeded)

	service := &HealthService{redisClient: mockRedis, log: logger.GetLogger()}
	result := service.checkRedis(context.Background())

	assert.Equal(t, types.HealthStatusDown, result.Status)
	assert.Equal(t, "Redis connection failed", result.Details)
	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHealthService_Ready(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()
	mockDB.ExpectPing()

	service := NewHealthService(mockDB, nil, "1.0.0")
	assert.True(t, service.Ready(context.Background()))
}

func TestAggregateStatus(t *testing.T) {
	assert.Equal(t, types.HealthStatusDegraded, aggregateStatus(map[string]types.HealthComponent{
		"database": {Status: types.HealthStatusDegraded},
		"redis":    {Status: types.HealthStatusUp},
	}))
	assert.Equal(t, types.HealthStatusDown, aggregateStatus(map[string]types.HealthComponent{
		"database": {Status: types.HealthStatusDegraded},
		"redis":    {Status: types.HealthStatusDown},
	}))
}
