package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turbine_data_pipeline/models"
)

func TestDetectAnomalies_RowCountInvariance(t *testing.T) {
	cleaned := []models.Reading{
		reading("T1", day(1, 0), 1),
		reading("T1", day(1, 1), 2),
		reading("T1", day(2, 0), 3),
		reading("T2", day(1, 0), 4),
	}

	records := DetectAnomalies(cleaned)

	require.Len(t, records, len(cleaned))
	for i, r := range records {
		assert.Equal(t, cleaned[i].TurbineID, r.TurbineID)
		assert.Equal(t, cleaned[i].Timestamp, r.Timestamp)
		assert.Equal(t, cleaned[i].PowerOutput, r.PowerOutput)
		assert.Equal(t, cleaned[i].SourceFile, r.SourceFile)
	}
}

func TestDetectAnomalies_ZeroVarianceDayFlagsNothing(t *testing.T) {
	cleaned := []models.Reading{
		reading("T1", day(1, 0), 10),
		reading("T1", day(1, 1), 10),
		reading("T1", day(1, 2), 10),
	}

	records := DetectAnomalies(cleaned)

	require.Len(t, records, 3)
	for _, r := range records {
		assert.False(t, r.IsAnomaly)
	}
}

func TestDetectAnomalies_SingleReadingDayFlagsNothing(t *testing.T) {
	cleaned := []models.Reading{
		reading("T1", day(1, 0), 123.45),
	}

	records := DetectAnomalies(cleaned)

	require.Len(t, records, 1)
	assert.False(t, records[0].IsAnomaly)
}

func TestDetectAnomalies_SpikeWithinTwoSigmaNotFlagged(t *testing.T) {
	// Values [5,5,5,50]: mean 16.25, sample std 22.5, tolerance 45.
	// |50-16.25| = 33.75 <= 45, so even the spike stays unflagged.
	cleaned := []models.Reading{
		reading("T2", day(1, 0), 5),
		reading("T2", day(1, 1), 5),
		reading("T2", day(1, 2), 5),
		reading("T2", day(1, 3), 50),
	}

	records := DetectAnomalies(cleaned)

	require.Len(t, records, 4)
	for _, r := range records {
		assert.False(t, r.IsAnomaly, "power %v should be within tolerance", r.PowerOutput)
	}
}

func TestDetectAnomalies_DeviantReadingFlagged(t *testing.T) {
	// Nine readings at 10 and one at 100: mean 19, sample std sqrt(810),
	// tolerance ~56.9. Only |100-19| = 81 exceeds it.
	cleaned := make([]models.Reading, 0, 10)
	for hour := 0; hour < 9; hour++ {
		cleaned = append(cleaned, reading("T1", day(1, hour), 10))
	}
	cleaned = append(cleaned, reading("T1", day(1, 9), 100))

	records := DetectAnomalies(cleaned)

	require.Len(t, records, 10)
	for i := 0; i < 9; i++ {
		assert.False(t, records[i].IsAnomaly)
	}
	assert.True(t, records[9].IsAnomaly)
}

func TestDetectAnomalies_ToleranceIsPerTurbineDay(t *testing.T) {
	// The same deviant pattern on day 2 must not affect day 1's constant
	// output, and vice versa.
	cleaned := []models.Reading{
		reading("T1", day(1, 0), 10),
		reading("T1", day(1, 1), 10),
	}
	for hour := 0; hour < 9; hour++ {
		cleaned = append(cleaned, reading("T1", day(2, hour), 10))
	}
	cleaned = append(cleaned, reading("T1", day(2, 9), 100))

	records := DetectAnomalies(cleaned)

	require.Len(t, records, 12)
	for i := 0; i < 11; i++ {
		assert.False(t, records[i].IsAnomaly)
	}
	assert.True(t, records[11].IsAnomaly)
}

func TestDetectAnomalies_EmptyInput(t *testing.T) {
	assert.Empty(t, DetectAnomalies(nil))
}
