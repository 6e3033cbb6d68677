package utils

import (
	"errors"
	"fmt"
)

// Custom error types
var (
	// ErrDiscovery is returned when the migrations directory cannot be read
	ErrDiscovery = errors.New("discovery error")

	// ErrConnection is returned when the database cannot be reached or created
	ErrConnection = errors.New("connection error")

	// ErrTransaction is returned when the run's transaction cannot begin or commit
	ErrTransaction = errors.New("transaction error")

	// ErrSchema is returned when history-table bookkeeping fails
	ErrSchema = errors.New("schema error")

	// ErrExecution is returned when a single migration file fails to apply
	ErrExecution = errors.New("execution error")

	// ErrHistory is returned when the migration history cannot be read or written
	ErrHistory = errors.New("history error")
)

// DiscoveryError represents a failure to list the migrations directory
type DiscoveryError struct {
	Dir   string
	Cause error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to read migrations directory '%s': %v", e.Dir, e.Cause)
}

func (e *DiscoveryError) Unwrap() error {
	return ErrDiscovery
}

// ConnectionError represents a failure to reach or create the database
type ConnectionError struct {
	Target string
	Cause  error
}

func (e *ConnectionError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("cannot connect to database '%s': %v", e.Target, e.Cause)
	}
	return fmt.Sprintf("cannot connect to database: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return ErrConnection
}

// TransactionError represents a begin or commit failure for the run's transaction
type TransactionError struct {
	Op    string
	Cause error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Cause)
}

func (e *TransactionError) Unwrap() error {
	return ErrTransaction
}

// SchemaError represents a failure to create the history table
type SchemaError struct {
	Table string
	Cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("could not ensure table '%s': %v", e.Table, e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// ExecutionError represents a single migration file failing to apply
type ExecutionError struct {
	Name  string
	Path  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("migration '%s' failed: %v", e.Name, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return ErrExecution
}

// HistoryError represents a failure reading or writing migration history
type HistoryError struct {
	Op    string
	Cause error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history %s failed: %v", e.Op, e.Cause)
}

func (e *HistoryError) Unwrap() error {
	return ErrHistory
}

// Error wrapping functions

// WrapDiscoveryError wraps an error as a discovery error
func WrapDiscoveryError(dir string, cause error) error {
	return &DiscoveryError{Dir: dir, Cause: cause}
}

// WrapConnectionError wraps an error as a connection error
func WrapConnectionError(target string, cause error) error {
	return &ConnectionError{Target: target, Cause: cause}
}

// WrapTransactionError wraps an error as a transaction error
func WrapTransactionError(op string, cause error) error {
	return &TransactionError{Op: op, Cause: cause}
}

// WrapSchemaError wraps an error as a schema error
func WrapSchemaError(table string, cause error) error {
	return &SchemaError{Table: table, Cause: cause}
}

// WrapExecutionError wraps an error as an execution error
func WrapExecutionError(name, path string, cause error) error {
	return &ExecutionError{Name: name, Path: path, Cause: cause}
}

// WrapHistoryError wraps an error as a history error
func WrapHistoryError(op string, cause error) error {
	return &HistoryError{Op: op, Cause: cause}
}

// Error checking functions

// IsDiscoveryError checks if an error is a discovery error
func IsDiscoveryError(err error) bool {
	return errors.Is(err, ErrDiscovery)
}

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsTransactionError checks if an error is a transaction error
func IsTransactionError(err error) bool {
	return errors.Is(err, ErrTransaction)
}

// IsSchemaError checks if an error is a schema error
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

// IsExecutionError checks if an error is an execution error
func IsExecutionError(err error) bool {
	return errors.Is(err, ErrExecution)
}

// IsHistoryError checks if an error is a history error
func IsHistoryError(err error) bool {
	return errors.Is(err, ErrHistory)
}
