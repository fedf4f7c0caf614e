package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"user-service/pkg/config"
)

func TestOpenSQL_SQLite(t *testing.T) {
	db, err := OpenSQL(config.DBConfig{
		Driver:          config.DriverSQLite,
		SQLitePath:      "file:" + t.Name() + "?mode=memory&cache=shared",
		MaxIdleConns:    1,
		MaxOpenConns:    2,
		ConnMaxLifetime: time.Minute,
		LogLevel:        logger.Silent,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 2, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenSQL_RejectsMongo(t *testing.T) {
	_, err := OpenSQL(config.DBConfig{Driver: config.DriverMongo})
	assert.ErrorContains(t, err, "not a relational database")
}
