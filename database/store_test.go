package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"turbine_data_pipeline/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func TestStore_SaveResultsTagsRun(t *testing.T) {
	db := testDB(t)
	store := NewStore(db)

	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cleaned := []models.Reading{
		{TurbineID: "T1", Timestamp: ts, PowerOutput: 2.5, SourceFile: "day1.csv"},
		{TurbineID: "T1", Timestamp: ts.Add(time.Hour), PowerOutput: 2.7, SourceFile: "day1.csv"},
	}
	stats := []models.DailyStat{
		{TurbineID: "T1", Date: "2025-06-01", MinOutput: 2.5, MaxOutput: 2.7, AvgOutput: 2.6},
	}
	anomalies := []models.AnomalyRecord{
		{TurbineID: "T1", Timestamp: ts, PowerOutput: 2.5, SourceFile: "day1.csv", IsAnomaly: false},
		{TurbineID: "T1", Timestamp: ts.Add(time.Hour), PowerOutput: 2.7, SourceFile: "day1.csv", IsAnomaly: true},
	}

	runID, err := store.SaveResults(cleaned, stats, anomalies)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	var readings []models.Reading
	require.NoError(t, db.Find(&readings).Error)
	require.Len(t, readings, 2)
	for _, r := range readings {
		assert.Equal(t, runID, r.RunID)
	}

	var dailyStats []models.DailyStat
	require.NoError(t, db.Find(&dailyStats).Error)
	require.Len(t, dailyStats, 1)
	assert.Equal(t, runID, dailyStats[0].RunID)

	var records []models.AnomalyRecord
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 2)
}

func TestStore_RunsCoexist(t *testing.T) {
	db := testDB(t)
	store := NewStore(db)

	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cleaned := []models.Reading{
		{TurbineID: "T1", Timestamp: ts, PowerOutput: 2.5, SourceFile: "day1.csv"},
	}

	first, err := store.SaveResults(cleaned, nil, nil)
	require.NoError(t, err)
	second, err := store.SaveResults(cleaned, nil, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	var count int64
	require.NoError(t, db.Model(&models.Reading{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestStore_EmptyResults(t *testing.T) {
	db := testDB(t)

	runID, err := NewStore(db).SaveResults(nil, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	var count int64
	require.NoError(t, db.Model(&models.Reading{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
