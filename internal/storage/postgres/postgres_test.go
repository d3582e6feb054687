package postgres

import (
	"testing"
	"time"

	"github.com/nari/actlog/internal/config"
	"github.com/nari/actlog/internal/database"
	"github.com/nari/actlog/internal/model"
	gormstorage "github.com/nari/actlog/internal/storage/gorm"
	"github.com/nari/actlog/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Unreachable(t *testing.T) {
	b := New(config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "postgres",
		Password: "postgres",
		Database: "actlog",
	}, gormstorage.Dependencies{SessionID: "s"})

	err := b.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres")

	// records still queue while the database is unavailable
	require.NoError(t, b.BuildAbilityEvent(core.AbilityRecord{}))
	assert.Equal(t, 1, b.Pending())
	assert.NoError(t, b.Close())
}

func TestInit_InjectedDB(t *testing.T) {
	db, err := database.OpenSqlite("")
	require.NoError(t, err)

	b := New(config.PostgresConfig{}, gormstorage.Dependencies{
		DB:            db,
		SessionID:     "2BcD3WqFOUhrmCZb7b7cYmQ1FNB",
		FlushInterval: time.Hour,
	})
	require.NoError(t, b.Init())

	require.NoError(t, b.BuildActor(core.ActorIdentity{ID: 1, Name: "Wuk Lamat"}, core.Resources{}, core.Position{}))
	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Model(&model.Actor{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
