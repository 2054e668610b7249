package pipeline

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"turbine_data_pipeline/models"
)

// dateFormat is the calendar-date form used for grouping and output
const dateFormat = "2006-01-02"

// DailyStats computes min, max and mean power output per turbine and UTC
// calendar day. The cleaned input is ordered by (turbine_id, timestamp), so
// every (turbine, day) group is a contiguous run of rows and a single pass
// suffices; the output inherits that ordering. No group is ever empty.
func DailyStats(cleaned []models.Reading) []models.DailyStat {
	stats := make([]models.DailyStat, 0)

	forEachDayGroup(cleaned, func(group []models.Reading, date string) {
		values := powerValues(group)
		stats = append(stats, models.DailyStat{
			TurbineID: group[0].TurbineID,
			Date:      date,
			MinOutput: floats.Min(values),
			MaxOutput: floats.Max(values),
			AvgOutput: stat.Mean(values, nil),
		})
	})

	return stats
}

// forEachDayGroup walks contiguous (turbine, day) runs of the cleaned set
func forEachDayGroup(cleaned []models.Reading, fn func(group []models.Reading, date string)) {
	for start := 0; start < len(cleaned); {
		date := cleaned[start].Timestamp.UTC().Format(dateFormat)
		end := start + 1
		for end < len(cleaned) &&
			cleaned[end].TurbineID == cleaned[start].TurbineID &&
			cleaned[end].Timestamp.UTC().Format(dateFormat) == date {
			end++
		}

		fn(cleaned[start:end], date)
		start = end
	}
}

func powerValues(group []models.Reading) []float64 {
	values := make([]float64, len(group))
	for i, row := range group {
		values[i] = row.PowerOutput
	}
	return values
}
