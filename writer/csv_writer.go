package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"turbine_data_pipeline/models"
)

// Output file names within the output directory
const (
	CleanedDataFile  = "cleaned_data.csv"
	SummaryStatsFile = "summary_statistics.csv"
	AnomaliesFile    = "anomalies.csv"
)

// SaveOutputs persists the three pipeline artifacts as CSV files into outDir,
// creating the directory (and parents) if absent. Callers invoke this only
// after all artifacts are fully computed, so a fatal condition earlier in the
// run leaves no partial output behind.
func SaveOutputs(outDir string, cleaned []models.Reading, stats []models.DailyStat, anomalies []models.AnomalyRecord) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeCleanedData(filepath.Join(outDir, CleanedDataFile), cleaned); err != nil {
		return err
	}
	if err := writeDailyStats(filepath.Join(outDir, SummaryStatsFile), stats); err != nil {
		return err
	}
	if err := writeAnomalies(filepath.Join(outDir, AnomaliesFile), anomalies); err != nil {
		return err
	}

	return nil
}

func writeCleanedData(path string, cleaned []models.Reading) error {
	rows := make([][]string, 0, len(cleaned))
	for _, r := range cleaned {
		rows = append(rows, []string{
			formatTimestamp(r.Timestamp),
			r.TurbineID,
			formatFloat(r.PowerOutput),
			r.SourceFile,
		})
	}

	header := []string{"timestamp", "turbine_id", "power_output", "source_file"}
	return writeCSV(path, header, rows)
}

func writeDailyStats(path string, stats []models.DailyStat) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.TurbineID,
			s.Date,
			formatFloat(s.MinOutput),
			formatFloat(s.MaxOutput),
			formatFloat(s.AvgOutput),
		})
	}

	header := []string{"turbine_id", "date", "min_output", "max_output", "avg_output"}
	return writeCSV(path, header, rows)
}

func writeAnomalies(path string, anomalies []models.AnomalyRecord) error {
	rows := make([][]string, 0, len(anomalies))
	for _, a := range anomalies {
		rows = append(rows, []string{
			formatTimestamp(a.Timestamp),
			a.TurbineID,
			formatFloat(a.PowerOutput),
			a.SourceFile,
			strconv.FormatBool(a.IsAnomaly),
		})
	}

	header := []string{"timestamp", "turbine_id", "power_output", "source_file", "is_anomaly"}
	return writeCSV(path, header, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows to %s: %w", filepath.Base(path), err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filepath.Base(path), err)
	}

	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
