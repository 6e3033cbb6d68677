package migration

import (
	"gorm.io/gorm"

	"github.com/example/schemaflow/internal/config"
	"github.com/example/schemaflow/internal/models"
	"github.com/example/schemaflow/internal/utils"
)

// HistoryTable is the name of the persisted migration ledger.
const HistoryTable = "migrations"

// The SQLite form is the compatibility contract; the postgres form is its
// closest dialect equivalent.
const (
	sqliteHistoryDDL = `CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		ran BOOLEAN NOT NULL,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	postgresHistoryDDL = `CREATE TABLE IF NOT EXISTS migrations (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		ran BOOLEAN NOT NULL,
		timestamp TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`
)

// HistoryStore owns the persisted record of which migrations have run.
// Every operation executes on the run's open transaction; nothing here
// commits independently.
type HistoryStore struct {
	tx     *gorm.DB
	driver string
}

// NewHistoryStore binds a history store to the run's transaction
func NewHistoryStore(tx *gorm.DB, driver string) *HistoryStore {
	return &HistoryStore{
		tx:     tx,
		driver: driver,
	}
}

// EnsureSchema creates the history table if absent. Idempotent.
func (s *HistoryStore) EnsureSchema() error {
	ddl := sqliteHistoryDDL
	if s.driver == config.DriverPostgres {
		ddl = postgresHistoryDDL
	}
	if err := s.tx.Exec(ddl).Error; err != nil {
		return utils.WrapSchemaError(HistoryTable, err)
	}
	return nil
}

// LoadAll returns every persisted migration record in id order
func (s *HistoryStore) LoadAll() ([]models.MigrationRecord, error) {
	var records []models.MigrationRecord
	if err := s.tx.Order("id").Find(&records).Error; err != nil {
		return nil, utils.WrapHistoryError("load", err)
	}
	return records, nil
}

// Insert appends a new record and returns the number of affected rows.
// The timestamp column is left to its CURRENT_TIMESTAMP default.
func (s *HistoryStore) Insert(name, path string, ran bool) (int64, error) {
	record := &models.MigrationRecord{
		Name: name,
		Path: path,
		Ran:  ran,
	}
	result := s.tx.Create(record)
	if result.Error != nil {
		return 0, utils.WrapHistoryError("insert", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkRan sets ran = true for the record with the given surrogate id
func (s *HistoryStore) MarkRan(id uint) error {
	result := s.tx.Model(&models.MigrationRecord{}).Where("id = ?", id).Update("ran", true)
	if result.Error != nil {
		return utils.WrapHistoryError("update", result.Error)
	}
	return nil
}
