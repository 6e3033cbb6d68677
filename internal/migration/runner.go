package migration

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/example/schemaflow/internal/database"
	"github.com/example/schemaflow/internal/models"
	"github.com/example/schemaflow/internal/utils"
)

// Outcome classifies what happened to a single migration file within a run
type Outcome string

// Per-file outcomes
const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result records the outcome for one discovered file
type Result struct {
	Name    string
	Path    string
	Outcome Outcome
	Err     error
}

// Report collects per-file results for one engine run, in execution order
type Report struct {
	Results []Result
}

func (r *Report) add(file *File, outcome Outcome, err error) {
	r.Results = append(r.Results, Result{
		Name:    file.Name,
		Path:    file.Path,
		Outcome: outcome,
		Err:     err,
	})
}

// Applied returns the number of files executed successfully this run
func (r *Report) Applied() int { return r.count(OutcomeApplied) }

// Skipped returns the number of files the skip policy excluded this run
func (r *Report) Skipped() int { return r.count(OutcomeSkipped) }

// Failed returns the number of files that failed this run
func (r *Report) Failed() int { return r.count(OutcomeFailed) }

func (r *Report) count(outcome Outcome) int {
	n := 0
	for _, result := range r.Results {
		if result.Outcome == outcome {
			n++
		}
	}
	return n
}

// Options configure a single engine run
type Options struct {
	// Directory holds the migration files
	Directory string
	// RunTestMigrations widens execution to test-marked files
	RunTestMigrations bool
}

// Runner orchestrates one migration run: it ensures the database and the
// history table exist, reconciles discovered files against history inside a
// single transaction, and commits the run as a whole. Per-file failures are
// isolated with savepoints so one broken script cannot take down the files
// that succeeded before it.
type Runner struct {
	db     *database.Database
	logger zerolog.Logger
	opts   Options
}

// NewRunner creates a new migration runner
func NewRunner(db *database.Database, logger zerolog.Logger, opts Options) *Runner {
	return &Runner{
		db:     db,
		logger: logger,
		opts:   opts,
	}
}

// Run executes one migration pass. The returned report carries a Result per
// discovered file even when the run ends in a fatal error after discovery;
// the error is non-nil for fatal conditions (history read, discovery,
// begin/commit), in which case none of the run's mutations survive.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.db.EnsureExists(); err != nil {
		return nil, err
	}
	if r.db.DB() == nil {
		if err := r.db.Connect(); err != nil {
			return nil, err
		}
	}

	tx := r.db.DB().WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, utils.WrapTransactionError("begin", tx.Error)
	}

	store := NewHistoryStore(tx, r.db.Driver())

	// Non-fatal: if the table is truly missing, the history load below
	// fails loudly
	if err := store.EnsureSchema(); err != nil {
		r.logger.Warn().Err(err).Msg("Could not create the migrations table")
	}

	history, err := store.LoadAll()
	if err != nil {
		tx.Rollback()
		r.logger.Error().Err(err).Msg("Could not get migrations history")
		return nil, err
	}

	files, err := Discover(r.opts.Directory)
	if err != nil {
		tx.Rollback()
		r.logger.Error().Err(err).Str("directory", r.opts.Directory).Msg("Could not get migrations files")
		return nil, err
	}

	report := &Report{}
	if len(history) == 0 {
		r.runBootstrap(tx, store, files, report)
	} else {
		r.runIncremental(tx, store, files, history, report)
	}

	if err := tx.Commit().Error; err != nil {
		r.logger.Error().Err(err).Msg("Could not commit migrations")
		return report, utils.WrapTransactionError("commit", err)
	}

	r.logger.Info().
		Int("applied", report.Applied()).
		Int("skipped", report.Skipped()).
		Int("failed", report.Failed()).
		Msg("Migration run complete")

	return report, nil
}

// runBootstrap handles the empty-history case: every discovered file is a
// first-time candidate and successes are inserted as new records
func (r *Runner) runBootstrap(tx *gorm.DB, store *HistoryStore, files []File, report *Report) {
	for i := range files {
		file := &files[i]
		if Skip(file.Ran, file.Name, r.opts.RunTestMigrations) {
			r.logger.Debug().Str("name", file.Name).Msg("Skipping migration")
			report.add(file, OutcomeSkipped, nil)
			continue
		}
		r.apply(tx, store, file, nil, report)
	}
}

// runIncremental matches discovered files to history records by name. A
// match supplies the real ran flag and record id; an unmatched file is
// treated the same as in a bootstrap run.
func (r *Runner) runIncremental(tx *gorm.DB, store *HistoryStore, files []File, history []models.MigrationRecord, report *Report) {
	byName := make(map[string]*models.MigrationRecord, len(history))
	for i := range history {
		byName[history[i].Name] = &history[i]
	}

	for i := range files {
		file := &files[i]

		ran := file.Ran
		var idToUpdate *uint
		if record, ok := byName[file.Name]; ok {
			ran = record.Ran
			idToUpdate = &record.ID
		}

		if Skip(ran, file.Name, r.opts.RunTestMigrations) {
			r.logger.Debug().Str("name", file.Name).Msg("Skipping migration")
			report.add(file, OutcomeSkipped, nil)
			continue
		}
		r.apply(tx, store, file, idToUpdate, report)
	}
}

// apply executes one file under its own savepoint and records the outcome
// in history. A failure rolls back to the savepoint, leaving every earlier
// success in this run intact, and the run moves on to the next file.
func (r *Runner) apply(tx *gorm.DB, store *HistoryStore, file *File, idToUpdate *uint, report *Report) {
	savepoint := fmt.Sprintf("migration_%d", len(report.Results))
	if err := tx.SavePoint(savepoint).Error; err != nil {
		r.logger.Error().Err(err).Str("name", file.Name).Msg("Could not create savepoint")
		report.add(file, OutcomeFailed, utils.WrapExecutionError(file.Name, file.Path, err))
		return
	}

	if err := r.execute(tx, file); err != nil {
		tx.RollbackTo(savepoint)
		r.logger.Error().Err(err).
			Str("name", file.Name).
			Str("path", file.Path).
			Msg("Could not run migration")
		report.add(file, OutcomeFailed, err)
		return
	}

	file.Ran = true

	if err := r.record(store, file, idToUpdate); err != nil {
		tx.RollbackTo(savepoint)
		r.logger.Error().Err(err).
			Str("name", file.Name).
			Msg("Could not save migration to history")
		report.add(file, OutcomeFailed, err)
		return
	}

	r.logger.Info().Str("name", file.Name).Msg("Migration applied")
	report.add(file, OutcomeApplied, nil)
}

// execute reads the file and runs its full text as one batch on the
// transaction
func (r *Runner) execute(tx *gorm.DB, file *File) error {
	sql, err := os.ReadFile(file.Path)
	if err != nil {
		return utils.WrapExecutionError(file.Name, file.Path, err)
	}
	if err := tx.Exec(string(sql)).Error; err != nil {
		return utils.WrapExecutionError(file.Name, file.Path, err)
	}
	return nil
}

// record persists a successful execution: an existing record is marked ran,
// a first-time file is inserted fresh
func (r *Runner) record(store *HistoryStore, file *File, idToUpdate *uint) error {
	if idToUpdate != nil {
		return store.MarkRan(*idToUpdate)
	}
	_, err := store.Insert(file.Name, file.Path, file.Ran)
	return err
}
