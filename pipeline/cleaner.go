package pipeline

import (
	"sort"
	"strings"
	"time"

	"turbine_data_pipeline/models"
)

// Outlier fence multipliers. The fence widens the empirical 1-99 percentile
// band: the lower bound is pulled toward zero and the upper bound pushed
// further up, so only values far beyond a turbine's typical range are
// excluded. The widening is deliberate; do not tighten it.
const (
	fenceLowQuantile    = 0.01
	fenceHighQuantile   = 0.99
	fenceLowMultiplier  = 0.5
	fenceHighMultiplier = 1.5
)

// timestampLayouts are the accepted raw timestamp formats. Layouts without a
// zone anchor to UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parsedReading is a row after timestamp normalization, power still nullable
type parsedReading struct {
	turbineID string
	timestamp time.Time
	power     *float64
	source    string
}

// Clean repairs the raw dataset and returns the cleaned readings ordered by
// (turbine_id, timestamp). Stages, in order over the whole dataset:
//
//  1. drop exact-duplicate rows
//  2. parse timestamps to UTC (failures become null, not errors)
//  3. drop rows lacking a turbine_id or a parseable timestamp
//  4. fill missing power with the per-turbine median
//  5. drop rows whose power is still missing (all-missing turbine)
//  6. drop rows outside the per-turbine widened percentile fence
//
// Dirty data is repaired or dropped, never fatal. A turbine with no
// salvageable readings is silently absent from the output.
func Clean(raw []models.RawReading) []models.Reading {
	parsed := normalize(dropDuplicates(raw))
	cleaned := imputeMissing(parsed)
	cleaned = applyFence(cleaned)

	sort.SliceStable(cleaned, func(i, j int) bool {
		if cleaned[i].TurbineID != cleaned[j].TurbineID {
			return cleaned[i].TurbineID < cleaned[j].TurbineID
		}
		return cleaned[i].Timestamp.Before(cleaned[j].Timestamp)
	})

	return cleaned
}

// rowKey identifies an exact duplicate across all raw columns. A missing
// power value only matches another missing power value.
type rowKey struct {
	rawTimestamp string
	turbineID    string
	source       string
	power        float64
	powerNull    bool
}

// dropDuplicates removes rows that are exact duplicates across all raw
// columns, keeping the first occurrence
func dropDuplicates(raw []models.RawReading) []models.RawReading {
	seen := make(map[rowKey]struct{}, len(raw))
	deduped := make([]models.RawReading, 0, len(raw))

	for _, row := range raw {
		key := rowKey{
			rawTimestamp: row.RawTimestamp,
			turbineID:    row.TurbineID,
			source:       row.SourceFile,
			powerNull:    row.PowerOutput == nil,
		}
		if row.PowerOutput != nil {
			key.power = *row.PowerOutput
		}

		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, row)
	}

	return deduped
}

// normalize parses timestamps and drops rows that cannot be salvaged: blank
// turbine_id or a timestamp no layout accepts
func normalize(raw []models.RawReading) []parsedReading {
	parsed := make([]parsedReading, 0, len(raw))

	for _, row := range raw {
		turbineID := strings.TrimSpace(row.TurbineID)
		if turbineID == "" {
			continue
		}

		timestamp, ok := parseTimestamp(row.RawTimestamp)
		if !ok {
			continue
		}

		parsed = append(parsed, parsedReading{
			turbineID: turbineID,
			timestamp: timestamp,
			power:     row.PowerOutput,
			source:    row.SourceFile,
		})
	}

	return parsed
}

// parseTimestamp converts a raw timestamp to a UTC-anchored point in time
func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// imputeMissing fills missing power values with the median of the turbine's
// non-missing values, then drops rows still missing one. A turbine with zero
// non-missing readings has an undefined median, so all its rows drop here:
// drop rather than guess, no forward or back fill.
func imputeMissing(parsed []parsedReading) []models.Reading {
	groupValues := make(map[string][]float64)
	for _, row := range parsed {
		if row.power != nil {
			groupValues[row.turbineID] = append(groupValues[row.turbineID], *row.power)
		}
	}

	medians := make(map[string]float64, len(groupValues))
	for turbineID, values := range groupValues {
		medians[turbineID] = quantile(values, 0.5)
	}

	cleaned := make([]models.Reading, 0, len(parsed))
	for _, row := range parsed {
		power := row.power
		if power == nil {
			median, ok := medians[row.turbineID]
			if !ok {
				continue
			}
			power = &median
		}

		cleaned = append(cleaned, models.Reading{
			TurbineID:   row.turbineID,
			Timestamp:   row.timestamp,
			PowerOutput: *power,
			SourceFile:  row.source,
		})
	}

	return cleaned
}

// applyFence keeps rows whose power lies within the turbine's widened 1-99
// percentile fence, inclusive both ends. A single-observation turbine keeps
// its row: both quantiles equal the value and the 0.5x/1.5x scaling of an
// equal bound still straddles any non-negative output.
func applyFence(cleaned []models.Reading) []models.Reading {
	groupValues := make(map[string][]float64)
	for _, row := range cleaned {
		groupValues[row.TurbineID] = append(groupValues[row.TurbineID], row.PowerOutput)
	}

	type fence struct {
		low, high float64
	}
	fences := make(map[string]fence, len(groupValues))
	for turbineID, values := range groupValues {
		fences[turbineID] = fence{
			low:  quantile(values, fenceLowQuantile) * fenceLowMultiplier,
			high: quantile(values, fenceHighQuantile) * fenceHighMultiplier,
		}
	}

	kept := make([]models.Reading, 0, len(cleaned))
	for _, row := range cleaned {
		f := fences[row.TurbineID]
		if row.PowerOutput >= f.low && row.PowerOutput <= f.high {
			kept = append(kept, row)
		}
	}

	return kept
}
