package generator

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// rawRow is one line of a synthetic daily feed. Fields are strings so the
// generator can inject the dirt the pipeline is supposed to repair: bad
// timestamps, blank turbine ids, missing power values.
type rawRow struct {
	timestamp string
	turbineID string
	power     string
}

// feed describes one synthetic data group
type feed struct {
	filename string
	turbines []string
	days     int
}

// WriteDataGroups writes synthetic daily turbine feeds into outDir, one CSV
// per data group, with duplicates, unparseable timestamps, missing readings
// and output spikes sprinkled in.
func WriteDataGroups(outDir string, groups int) error {
	if groups <= 0 {
		groups = 3
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	feeds := make([]feed, 0, groups)
	for g := 0; g < groups; g++ {
		turbines := make([]string, 0, 5)
		for t := 0; t < 5; t++ {
			turbines = append(turbines, fmt.Sprintf("T%02d", g*5+t+1))
		}
		feeds = append(feeds, feed{
			filename: fmt.Sprintf("data_group_%d.csv", g+1),
			turbines: turbines,
			days:     7,
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, len(feeds))
	for i, f := range feeds {
		wg.Add(1)
		go func(i int, f feed) {
			defer wg.Done()
			// Per-feed source so concurrent writers don't share the rng
			local := rand.New(rand.NewSource(rng.Int63()))
			rows := generateFeed(f, local)
			errs[i] = writeCSV(filepath.Join(outDir, f.filename), rows)
		}(i, f)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", feeds[i].filename, err)
		}
	}

	return nil
}

// generateFeed produces hourly readings per turbine with a diurnal power
// curve plus noise, then injects data-quality defects.
func generateFeed(f feed, rng *rand.Rand) []rawRow {
	var rows []rawRow

	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -f.days)

	for day := 0; day < f.days; day++ {
		for hour := 0; hour < 24; hour++ {
			timestamp := start.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)

			for j, turbine := range f.turbines {
				// Wind picks up in the afternoon; each turbine sits at a
				// slightly different operating point
				hourAngle := float64(hour) * math.Pi / 12
				base := 2.5 + 1.2*math.Sin(hourAngle-math.Pi/2)
				noise := rng.Float64()*0.6 - 0.3
				offset := float64(j) * 0.15

				power := math.Max(0, base+noise+offset)

				row := rawRow{
					timestamp: timestamp.Format(time.RFC3339),
					turbineID: turbine,
					power:     fmt.Sprintf("%.3f", power),
				}

				switch {
				case rng.Float64() < 0.01:
					// Sensor dropout: reading arrives without a value
					row.power = ""
				case rng.Float64() < 0.005:
					// Stuck inverter reported as an extreme spike
					row.power = fmt.Sprintf("%.3f", power*40)
				case rng.Float64() < 0.005:
					// Corrupted timestamp
					row.timestamp = "not-a-timestamp"
				case rng.Float64() < 0.003:
					// Row with no turbine attribution
					row.turbineID = ""
				}

				rows = append(rows, row)

				// Occasional exact duplicate from a double-flushed collector
				if rng.Float64() < 0.01 {
					rows = append(rows, row)
				}
			}
		}
	}

	return rows
}

func writeCSV(filename string, rows []rawRow) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	var sb strings.Builder
	sb.WriteString("timestamp,turbine_id,power_output\n")
	for _, row := range rows {
		sb.WriteString(row.timestamp)
		sb.WriteByte(',')
		sb.WriteString(row.turbineID)
		sb.WriteByte(',')
		sb.WriteString(row.power)
		sb.WriteByte('\n')
	}

	_, err = file.WriteString(sb.String())
	return err
}
