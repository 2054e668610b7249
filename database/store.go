package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"turbine_data_pipeline/models"
)

const defaultBatchSize = 1000

// Store persists pipeline outputs to the configured database. Every export
// is tagged with a fresh run identifier so batch runs coexist side by side;
// there are no incremental or append semantics within a run.
type Store struct {
	db        *gorm.DB
	batchSize int
}

// NewStore creates a store over an established connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, batchSize: defaultBatchSize}
}

// SaveResults writes the cleaned readings, daily statistics and anomaly
// records in one transaction and returns the run identifier they were tagged
// with. Nothing is written if any table fails.
func (s *Store) SaveResults(cleaned []models.Reading, stats []models.DailyStat, anomalies []models.AnomalyRecord) (string, error) {
	runID := uuid.NewString()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		readings := make([]models.Reading, len(cleaned))
		for i, r := range cleaned {
			r.ID = 0
			r.RunID = runID
			readings[i] = r
		}
		if len(readings) > 0 {
			if err := tx.CreateInBatches(readings, s.batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert cleaned readings: %w", err)
			}
		}

		dailyStats := make([]models.DailyStat, len(stats))
		for i, d := range stats {
			d.ID = 0
			d.RunID = runID
			dailyStats[i] = d
		}
		if len(dailyStats) > 0 {
			if err := tx.CreateInBatches(dailyStats, s.batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert daily stats: %w", err)
			}
		}

		records := make([]models.AnomalyRecord, len(anomalies))
		for i, a := range anomalies {
			a.ID = 0
			a.RunID = runID
			records[i] = a
		}
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, s.batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert anomaly records: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return runID, nil
}
