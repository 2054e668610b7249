package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"turbine_data_pipeline/logger"
	"turbine_data_pipeline/models"
)

// requiredColumns is the minimum schema every daily feed must carry.
var requiredColumns = []string{"timestamp", "turbine_id", "power_output"}

// FileNotFoundError reports a configured input file that does not exist
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

// MissingColumnsError reports an input file whose header lacks required columns
type MissingColumnsError struct {
	File    string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s is missing columns %v", e.File, e.Columns)
}

// Loader reads the configured daily CSV feeds into raw readings
type Loader struct {
	workerCount int
}

// fileJob pairs an input file with its position in the configured list
type fileJob struct {
	index    int
	filePath string
}

// fileResult holds one file's rows, slotted back by index so the
// concatenated output follows the configured file order
type fileResult struct {
	rows []models.RawReading
	err  error
}

// New creates a new loader
func New() *Loader {
	// Default to number of CPU cores for parallel file reads
	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8
	}

	return &Loader{workerCount: workerCount}
}

// SetWorkerCount sets the number of parallel workers
func (l *Loader) SetWorkerCount(count int) {
	if count > 0 {
		l.workerCount = count
	}
}

// Load reads every configured file and returns the union of all rows, each
// annotated with the base name of its originating file. Timestamps are not
// parsed here; the cleaner is the single conversion point. A missing file or
// a missing required column is fatal and no rows are returned.
func (l *Loader) Load(files []string) ([]models.RawReading, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files configured")
	}

	// Fail fast on missing files before reading anything
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			return nil, &FileNotFoundError{Path: file}
		}
	}

	results := l.loadParallel(files)

	// Surface the first failure in configured file order
	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", files[i], result.err)
		}
	}

	var all []models.RawReading
	for i, result := range results {
		logger.Debugf("Loaded %d rows from %s\n", len(result.rows), filepath.Base(files[i]))
		all = append(all, result.rows...)
	}

	return all, nil
}

// loadParallel reads files on a bounded worker pool. Each worker writes to
// its own result slot, so no ordering is lost to scheduling.
func (l *Loader) loadParallel(files []string) []fileResult {
	jobs := make(chan fileJob, len(files))
	results := make([]fileResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < l.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				rows, err := loadFile(job.filePath)
				results[job.index] = fileResult{rows: rows, err: err}
			}
		}()
	}

	for i, file := range files {
		jobs <- fileJob{index: i, filePath: file}
	}
	close(jobs)
	wg.Wait()

	return results
}

// loadFile reads a single CSV feed into raw readings
func loadFile(filePath string) ([]models.RawReading, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	fileName := filepath.Base(filePath)

	if len(records) == 0 {
		return nil, &MissingColumnsError{File: fileName, Columns: requiredColumns}
	}

	columns, err := resolveColumns(records[0], fileName)
	if err != nil {
		return nil, err
	}

	rows := make([]models.RawReading, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]

		// Skip empty rows
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}

		rows = append(rows, models.RawReading{
			RawTimestamp: fieldAt(record, columns["timestamp"]),
			TurbineID:    fieldAt(record, columns["turbine_id"]),
			PowerOutput:  parsePower(fieldAt(record, columns["power_output"]), fileName, i),
			SourceFile:   fileName,
		})
	}

	return rows, nil
}

// resolveColumns maps header names to positions and verifies the minimum
// schema. Extra columns are tolerated and ignored.
func resolveColumns(header []string, fileName string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{File: fileName, Columns: missing}
	}

	return columns, nil
}

// fieldAt returns the trimmed field at index, or empty when the row is short
func fieldAt(record []string, index int) string {
	if index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

// parsePower parses a power cell. A blank or non-numeric cell loads as
// missing and is repaired or dropped during cleaning, never fatal here.
func parsePower(raw, fileName string, row int) *float64 {
	if raw == "" {
		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warnf("Row %d in %s has non-numeric power_output %q, treating as missing\n",
			row+1, fileName, raw)
		return nil
	}

	return &value
}
