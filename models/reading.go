package models

import (
	"time"
)

// RawReading is one row as loaded from a daily CSV feed. The timestamp is
// kept unparsed and the power value may be missing; both are resolved during
// cleaning, which is the single conversion point for the whole dataset.
type RawReading struct {
	RawTimestamp string
	TurbineID    string
	PowerOutput  *float64
	SourceFile   string
}

// Reading represents a cleaned turbine power reading
type Reading struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID       string    `gorm:"index;size:36" json:"run_id"`
	Timestamp   time.Time `gorm:"not null;index:idx_turbine_timestamp" json:"timestamp"`
	TurbineID   string    `gorm:"not null;size:255;index:idx_turbine_timestamp" json:"turbine_id"`
	PowerOutput float64   `gorm:"not null" json:"power_output"`
	SourceFile  string    `gorm:"size:255" json:"source_file"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName customizes the table name
func (Reading) TableName() string {
	return "cleaned_readings"
}

// DailyStat summarizes one turbine's power output over one UTC calendar day
type DailyStat struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID     string    `gorm:"index;size:36" json:"run_id"`
	TurbineID string    `gorm:"not null;size:255;index:idx_turbine_date" json:"turbine_id"`
	Date      string    `gorm:"not null;size:10;index:idx_turbine_date" json:"date"`
	MinOutput float64   `gorm:"not null" json:"min_output"`
	MaxOutput float64   `gorm:"not null" json:"max_output"`
	AvgOutput float64   `gorm:"not null" json:"avg_output"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName customizes the table name
func (DailyStat) TableName() string {
	return "daily_stats"
}

// AnomalyRecord is a cleaned reading annotated with an anomaly flag
type AnomalyRecord struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID       string    `gorm:"index;size:36" json:"run_id"`
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`
	TurbineID   string    `gorm:"not null;size:255" json:"turbine_id"`
	PowerOutput float64   `gorm:"not null" json:"power_output"`
	SourceFile  string    `gorm:"size:255" json:"source_file"`
	IsAnomaly   bool      `gorm:"not null" json:"is_anomaly"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName customizes the table name
func (AnomalyRecord) TableName() string {
	return "anomaly_records"
}

// AllModels returns all models for migration
func AllModels() []interface{} {
	return []interface{}{
		&Reading{},
		&DailyStat{},
		&AnomalyRecord{},
	}
}
