package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turbine_data_pipeline/models"
)

func reading(turbine string, ts time.Time, power float64) models.Reading {
	return models.Reading{
		TurbineID:   turbine,
		Timestamp:   ts,
		PowerOutput: power,
		SourceFile:  "day1.csv",
	}
}

func day(d int, hour int) time.Time {
	return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC)
}

func TestDailyStats_ConstantDay(t *testing.T) {
	cleaned := []models.Reading{
		reading("T1", day(1, 0), 10),
		reading("T1", day(1, 1), 10),
		reading("T1", day(1, 2), 10),
	}

	stats := DailyStats(cleaned)

	require.Len(t, stats, 1)
	assert.Equal(t, "T1", stats[0].TurbineID)
	assert.Equal(t, "2025-06-01", stats[0].Date)
	assert.Equal(t, 10.0, stats[0].MinOutput)
	assert.Equal(t, 10.0, stats[0].MaxOutput)
	assert.Equal(t, 10.0, stats[0].AvgOutput)
}

func TestDailyStats_OneRecordPerTurbineDay(t *testing.T) {
	cleaned := []models.Reading{
		reading("T1", day(1, 0), 1),
		reading("T1", day(1, 12), 3),
		reading("T1", day(2, 0), 7),
		reading("T2", day(1, 0), 5),
		reading("T2", day(1, 6), 2),
	}

	stats := DailyStats(cleaned)

	require.Len(t, stats, 3)

	assert.Equal(t, "T1", stats[0].TurbineID)
	assert.Equal(t, "2025-06-01", stats[0].Date)
	assert.Equal(t, 1.0, stats[0].MinOutput)
	assert.Equal(t, 3.0, stats[0].MaxOutput)
	assert.Equal(t, 2.0, stats[0].AvgOutput)

	assert.Equal(t, "T1", stats[1].TurbineID)
	assert.Equal(t, "2025-06-02", stats[1].Date)
	assert.Equal(t, 7.0, stats[1].MinOutput)
	assert.Equal(t, 7.0, stats[1].MaxOutput)
	assert.Equal(t, 7.0, stats[1].AvgOutput)

	assert.Equal(t, "T2", stats[2].TurbineID)
	assert.Equal(t, "2025-06-01", stats[2].Date)
	assert.Equal(t, 2.0, stats[2].MinOutput)
	assert.Equal(t, 5.0, stats[2].MaxOutput)
	assert.Equal(t, 3.5, stats[2].AvgOutput)
}

func TestDailyStats_MinAvgMaxOrdering(t *testing.T) {
	cleaned := Clean([]models.RawReading{
		rawReading("2025-06-01T00:00:00Z", "T1", ptr(1.2), "day1.csv"),
		rawReading("2025-06-01T01:00:00Z", "T1", ptr(4.7), "day1.csv"),
		rawReading("2025-06-01T02:00:00Z", "T1", ptr(3.1), "day1.csv"),
		rawReading("2025-06-02T00:00:00Z", "T2", ptr(2.2), "day2.csv"),
	})

	stats := DailyStats(cleaned)
	require.NotEmpty(t, stats)

	for _, s := range stats {
		assert.LessOrEqual(t, s.MinOutput, s.AvgOutput)
		assert.LessOrEqual(t, s.AvgOutput, s.MaxOutput)
	}
}

func TestDailyStats_EmptyInput(t *testing.T) {
	assert.Empty(t, DailyStats(nil))
}
