package models

import (
	"time"
)

// MigrationRecord represents one row of the persisted migration history.
// At most one record exists per distinct Name; records are never deleted,
// and after creation only Ran is ever mutated.
type MigrationRecord struct {
	ID   uint   `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;not null" json:"name"`
	Path string `gorm:"column:path;not null" json:"path"`
	Ran  bool   `gorm:"column:ran;not null" json:"ran"`
	// Timestamp is assigned by the column default, never written by the engine
	Timestamp time.Time `gorm:"column:timestamp;->" json:"timestamp"`
}

// TableName ensures consistent table naming
func (MigrationRecord) TableName() string {
	return "migrations"
}
