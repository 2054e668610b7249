package pipeline

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"turbine_data_pipeline/models"
)

// DetectAnomalies flags readings more than two sample standard deviations
// away from their turbine's same-day mean, producing exactly one record per
// input row in input order. The threshold adapts per turbine and per day.
//
// A day with no measurable variation flags nothing: the standard deviation of
// a single-reading day is undefined and a constant day's is zero, and in
// either case any nonzero deviation would otherwise register as an anomaly
// with no baseline variance to compare against. The tolerance becomes +Inf
// for such groups.
func DetectAnomalies(cleaned []models.Reading) []models.AnomalyRecord {
	records := make([]models.AnomalyRecord, 0, len(cleaned))

	forEachDayGroup(cleaned, func(group []models.Reading, date string) {
		values := powerValues(group)
		mean := stat.Mean(values, nil)

		// Sample standard deviation; NaN for a single-reading day
		tol := 2 * stat.StdDev(values, nil)
		if math.IsNaN(tol) || tol == 0 {
			tol = math.Inf(1)
		}

		for _, row := range group {
			records = append(records, models.AnomalyRecord{
				Timestamp:   row.Timestamp,
				TurbineID:   row.TurbineID,
				PowerOutput: row.PowerOutput,
				SourceFile:  row.SourceFile,
				IsAnomaly:   math.Abs(row.PowerOutput-mean) > tol,
			})
		}
	})

	return records
}
